package report

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	msgLastDate     = "Most recent data: %s"
	msgEntityCount  = "%d countries and territories have reported cases."
	msgGlobalCases  = "Global confirmed cases = %d"
	msgGlobalDeath  = "Global deaths = %d"
	msgGlobalRate   = "Global case fatality rate = %.2f %%"
	msgGlobalNoRate = "Global case fatality rate = n/a"
	msgEntityCases  = "%s confirmed cases = %d"
	msgEntityDeath  = "%s deaths = %d"
	msgEntityRate   = "%s case fatality rate = %.4f"
	msgEntityNoRate = "%s case fatality rate = n/a"
	msgEntityList   = "Countries and territories: %s"
	msgDescribe     = "%s: count=%d mean=%.2f std=%.2f min=%d max=%d"
)

var supported = []language.Tag{language.AmericanEnglish, language.TraditionalChinese}

var matcher = language.NewMatcher(supported)

func newCatalog() (catalog.Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	zh := language.TraditionalChinese
	entries := map[string]string{
		msgLastDate:     "資料最新日期：%s",
		msgEntityCount:  "總共 %d 個國家有確診者。",
		msgGlobalCases:  "全球確診病例數 = %d",
		msgGlobalDeath:  "全球確診病例死亡數 = %d",
		msgGlobalRate:   "全球確診病例死亡率 = %.2f %%",
		msgGlobalNoRate: "全球確診病例死亡率 = 無資料",
		msgEntityCases:  "%s 確診病例數 = %d",
		msgEntityDeath:  "%s 確診死亡人數 = %d",
		msgEntityRate:   "%s 確診死亡率 = %.4f",
		msgEntityNoRate: "%s 確診死亡率 = 無資料",
		msgEntityList:   "國家與地區：%s",
		msgDescribe:     "%s：筆數=%d 平均=%.2f 標準差=%.2f 最小=%d 最大=%d",
	}
	for key, text := range entries {
		if err := b.SetString(zh, key, text); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// resolveLocale maps a locale string such as "zh-TW" or "en_US" onto the
// closest supported tag.
func resolveLocale(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.AmericanEnglish
	}
	_, idx, _ := matcher.Match(tag)
	return supported[idx]
}

func newPrinter(tag language.Tag) (*message.Printer, error) {
	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}
	return message.NewPrinter(tag, message.Catalog(cat)), nil
}

// formatDate renders a calendar date in the long form customary for tag.
func formatDate(tag language.Tag, t time.Time) string {
	if base, _ := tag.Base(); base.String() == "zh" {
		return t.Format("公元 2006 年 01 月 02 日")
	}
	return t.Format("January 2, 2006")
}
