package persona

// Persona 描述一個情緒原型角色，供前端選擇並用於引導諮商師模型。
type Persona struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Icon          string `json:"icon"`
	Description   string `json:"description"`
	PromptContext string `json:"promptContext"`
	ThemeColor    string `json:"themeColor"`
}

// Seed provides the built-in archetype catalog. The PromptContext text is
// forwarded verbatim to the counselor model and never parsed here.
func Seed() []Persona {
	return []Persona{
		{
			ID:            "perfectionist",
			Title:         "怕犯錯的完美主義者",
			Icon:          "🎯",
			Description:   "這也要做對，那也要做好。一點小失誤就讓你焦慮整晚，覺得自己很差勁。",
			PromptContext: "使用者是「怕犯錯的完美主義者」。他們對錯誤極度焦慮，覺得價值建立在成就上。引導他們接受「完成比完美重要」，理解不完美也是一種美。",
			ThemeColor:    "from-blue-500 to-cyan-400",
		},
		{
			ID:            "imposter",
			Title:         "覺得自己是騙子的冒牌者",
			Icon:          "🎭",
			Description:   "明明做得不錯，卻總覺得是運氣好。很怕哪天被發現其實自己沒那麼厲害。",
			PromptContext: "使用者是「冒牌者症候群」。他們無法內化成就，恐懼被揭穿。引導他們看見自己的實力與努力，將運氣與實力區分開來。",
			ThemeColor:    "from-purple-500 to-pink-400",
		},
		{
			ID:            "caregiver",
			Title:         "心好累的付出者",
			Icon:          "❤️‍🩹",
			Description:   "總是先照顧別人的情緒，把自己的需求縮得好小好小，累到想哭卻不敢停。",
			PromptContext: "使用者是「疲憊的照顧者」。習慣討好與付出，忽略自我。引導他們建立界線，重視自己的需求，明白照顧自己不是自私。",
			ThemeColor:    "from-emerald-500 to-teal-400",
		},
		{
			ID:            "loner",
			Title:         "害怕受傷的刺蝟",
			Icon:          "🦔",
			Description:   "想被理解又怕受傷。只要別人稍微靠近，就會忍不住想逃跑或把對方推開。",
			PromptContext: "使用者是「害怕受傷的刺蝟（孤獨者）」。渴望連結卻恐懼依賴。引導他們建立安全感，練習信任，慢慢放下身上的刺。",
			ThemeColor:    "from-slate-500 to-gray-400",
		},
		{
			ID:            "lost",
			Title:         "不知去向的迷路人",
			Icon:          "🧭",
			Description:   "看著大家都在前進，只有我停在原地。不知道未來在哪裡，覺得人生好迷惘。",
			PromptContext: "使用者是「迷路人」。對未來感到茫然焦慮，缺乏目標感。引導他們探索當下的感受，尋找微小的方向，專注於腳下的每一步。",
			ThemeColor:    "from-orange-500 to-amber-400",
		},
		{
			ID:            "hsp",
			Title:         "容易受傷的高敏感族",
			Icon:          "🦋",
			Description:   "別人的眼神、語氣，甚至環境的聲音都會讓你神經緊繃。常被說「你想太多了」。",
			PromptContext: "使用者是「高敏感族 (HSP)」。感官敏銳，容易過度負荷。引導他們將敏感視為天賦而非缺陷，學習情緒調節與自我保護。",
			ThemeColor:    "from-rose-400 to-red-300",
		},
		{
			ID:            "pleaser",
			Title:         "總是笑著的面具人",
			Icon:          "😊",
			Description:   "不敢拒絕，怕別人生氣或失望。總是笑著說「好」，心裡卻覺得好累好委屈。",
			PromptContext: "使用者是「討好者」。害怕衝突，壓抑真實感受。引導他們練習說「不」，表達真實情緒，找回真實的自己。",
			ThemeColor:    "from-yellow-400 to-orange-300",
		},
		{
			ID:            "numb",
			Title:         "感覺不到快樂的空心人",
			Icon:          "😶",
			Description:   "沒有特別難過，但也感覺不到開心。日子一天天過，心裡卻好像破了個洞。",
			PromptContext: "使用者是「空心人（情感麻木）」。與情緒斷聯，感到空虛。引導他們重新連結微小的感覺，找回生命力與熱情。",
			ThemeColor:    "from-indigo-400 to-blue-300",
		},
		{
			ID:            "breadwinner",
			Title:         "不敢冒險的家中支柱",
			Icon:          "🧱",
			Description:   "薪水高但心裡苦，待在舒適圈太久反而怕出去。背著全家的生計，覺得自己沒有「冒險的資格」。",
			PromptContext: "使用者是「不敢冒險的家中支柱（黃金手銬）」。身陷高薪但停滯的職場，背負家庭經濟重擔，恐懼改變帶來的風險。引導他們看見這份承擔的價值，接納「不敢動」的恐懼，並探索如何在沈重的責任縫隙中，找回一點點屬於自己的自由與喘息空間。",
			ThemeColor:    "from-amber-700 to-yellow-600",
		},
	}
}
