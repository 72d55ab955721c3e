// pkg/registry/defaults.go
package registry

// Default returns the built-in Chinese-first vocabulary.
func Default() *Vocabulary {
	return &Vocabulary{
		Version: "1.0.0",
		Intents: map[string][]string{
			"FOOD": {
				"美食", "餐廳", "好吃", "吃飯", "小吃", "早餐", "午餐", "晚餐", "宵夜",
				"咖啡", "飲料", "甜點", "火鍋", "拉麵", "便當", "吃", "餐",
				"restaurant", "food", "lunch", "dinner", "breakfast", "cafe", "coffee",
			},
			"ENGLISH_LEARNING": {
				"英文", "英語", "美語", "補習班", "補習", "家教", "學英文", "課程", "文法", "會話", "多益",
				"english", "tutor", "toeic", "ielts", "lesson",
			},
			"PARKING": {
				"停車場", "停車", "車位", "停哪", "parking", "car park", "garage",
			},
			"SHOPPING": {
				"購物", "逛街", "商店", "百貨", "買東西", "伴手禮", "服飾", "shopping", "shop", "store", "mall",
			},
			"BEAUTY": {
				"美髮", "美容", "剪髮", "染髮", "美甲", "按摩", "做臉", "spa", "salon", "haircut", "nail", "massage",
			},
			"MEDICAL": {
				"醫院", "診所", "看醫生", "醫生", "藥局", "牙醫", "掛號", "看病",
				"clinic", "hospital", "doctor", "pharmacy", "dentist",
			},
		},
		EducationSignals: []string{
			"英文", "英語", "美語", "補習", "家教", "教育", "學習", "課程", "多益",
			"english", "tutor", "education", "toeic", "ielts",
		},
		FoodSignals: []string{
			"美食", "餐廳", "好吃", "吃", "餐", "小吃", "咖啡", "料理", "飲料",
			"restaurant", "food", "dining", "cafe",
		},
		FollowUpPhrases: []string{
			"還有其他", "還有嗎", "更多", "其他選擇", "別的", "再推薦", "換一個",
			"anything else", "more options", "other choices", "something else", "any others", "what else",
		},
		FabricatedNames: []string{
			"文山英語中心",
			"文山美語學苑",
			"新光英語補習班",
			"陽光美食餐廳",
			"好運停車場",
		},
		FakeAddressPatterns: []string{
			`[\p{Han}]{1,6}(?:路|街|大道)(?:[一二三四五六七八九十\d]+段)?\d{1,4}(?:巷\d+)?號`,
			`\b\d{1,5}\s+[A-Z][a-z]+(?:\s[A-Z][a-z]+)*\s(?:Street|St\.|Road|Rd\.|Avenue|Ave\.|Boulevard|Blvd\.)`,
		},
		Tones: map[string]ToneProfile{
			"guide": {
				DisplayName: "在地嚮導",
				Version:     "1.0",
				Opening:     "以下是為您整理的資訊：",
				DataPrefix:  "可參考的地點：",
				EmptyResult: "目前資料庫中沒有符合的地點，建議您換個關鍵字再試試。",
				Closing:     "如需其他協助，請隨時告訴我。",
				Personality: []string{"精準", "實用", "簡潔"},
				Style:       "條列重點，先給地點與聯絡方式，避免多餘寒暄。",
			},
			"warm": {
				DisplayName: "溫暖學姊",
				Version:     "1.0",
				Opening:     "很高興你想開始學習！",
				DataPrefix:  "我推薦你看看：",
				EmptyResult: "目前資料庫中沒有找到合適的課程，我們會持續更新資訊。",
				Closing:     "學習路上加油，有問題都可以再問我喔！",
				Personality: []string{"溫暖", "鼓勵", "耐心"},
				Style:       "語氣親切鼓勵，先肯定使用者的動機，再介紹選項。",
			},
			"friendly": {
				DisplayName: "熱情在地人",
				Version:     "1.0",
				Opening:     "嗨！這附近有幾個不錯的選擇：",
				DataPrefix:  "推薦給你：",
				EmptyResult: "目前資料庫中沒有找到符合的店家，可以換個說法再問我看看。",
				Closing:     "祝你逛得開心！",
				Personality: []string{"熱情", "輕鬆", "友善"},
				Style:       "口語化、輕快，像朋友介紹私房景點一樣。",
			},
		},
		CategorySignals: map[string][]string{
			"FOOD":             {"food", "dining", "restaurant", "cafe", "餐", "食", "吃", "咖啡"},
			"ENGLISH_LEARNING": {"education", "training", "school", "english", "教育", "補習", "英語", "美語", "英文"},
			"PARKING":          {"parking", "garage", "停車"},
			"SHOPPING":         {"shopping", "retail", "store", "購物", "商店", "百貨"},
			"BEAUTY":           {"beauty", "wellness", "salon", "spa", "美容", "美髮"},
			"MEDICAL":          {"medical", "health", "clinic", "hospital", "醫", "診所", "藥局"},
		},
	}
}
