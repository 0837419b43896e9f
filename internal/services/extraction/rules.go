package extraction

import (
	"regexp"
	"strings"

	"github.com/ternarybob/ordersync/internal/models"
)

var (
	outfitsPresent = regexp.MustCompile(`([A-Z\s]+?)\s*(MODDED\s+)?OUTFITS?`)
	outfitsPrefix  = regexp.MustCompile(`(.+?)\s*(MODDED\s+)?OUTFITS?`)
	outfitsWord    = regexp.MustCompile(`OUTFITS?`)

	carsPresent = regexp.MustCompile(`([A-Z\s]+?)\s*(MODDED\s+)?CARS?`)
	carsPrefix  = regexp.MustCompile(`(.+?)\s*(MODDED\s+)?CARS?`)
	carsWord    = regexp.MustCompile(`CARS?`)

	consolePrefixes = []*regexp.Regexp{
		regexp.MustCompile(`^\[?PS5\]?\s*`),
		regexp.MustCompile(`^\[?PS4\]?\s*`),
		regexp.MustCompile(`^\[?XBOX\s+XS\]?\s*`),
		regexp.MustCompile(`^\[?XBOX\s+ONE\]?\s*`),
		regexp.MustCompile(`^\[?XBOX\s+SERIES\]?\s*`),
	}
	trioPrefix   = regexp.MustCompile(`^TRIO\s+OF\s+`)
	moddedPrefix = regexp.MustCompile(`^MODDED\s+`)

	// Quantities. Numbers must start on a word boundary so console names such as
	// "PS5" never donate their digit.
	rankRangeAfter   = regexp.MustCompile(`\b(\d+)\s*[–-]\s*(\d+)\s*(?:RANK|BOOST)`)
	rankRangeBefore  = regexp.MustCompile(`(?:RANK|BOOST)\s*(\d+)\s*[–-]\s*(\d+)`)
	rankSingleAfter  = regexp.MustCompile(`\b(\d+)\s*(?:RANK|BOOST)`)
	rankSingleBefore = regexp.MustCompile(`(?:RANK|BOOST)\s*(\d+)`)

	levelRangeAfter   = regexp.MustCompile(`\b(\d+)\s*[–-]\s*(\d+)\s*(?:LVL|LEVEL)`)
	levelRangeBefore  = regexp.MustCompile(`(?:LVL|LEVEL)\s*(\d+)\s*[–-]\s*(\d+)`)
	levelSingleAfter  = regexp.MustCompile(`\b(\d+)\s*(?:LVL|LEVEL)`)
	levelSingleBefore = regexp.MustCompile(`(?:LVL|LEVEL)\s*(\d+)`)

	cashMillions = regexp.MustCompile(`\b(\d+[MK]?)\s*M`)
	cashAdjacent = regexp.MustCompile(`\b(\d+[MK]?)\s*(?:CASH|MONEY)`)
	cashBare     = regexp.MustCompile(`\b(\d+)\s*(?:CASH|CARS)`)
)

func gtaPackageRule(in ruleInput) (models.Service, bool) {
	if !strings.Contains(in.upper, "GTA 5 PACKAGE") && !strings.Contains(in.upper, "GTA5 PACKAGE") {
		return models.Service{}, false
	}
	return fixedService(models.CategoryGTAPackage, in.console), true
}

func outfitsRule(in ruleInput) (models.Service, bool) {
	if in.matched["gta_package"] || !outfitsPresent.MatchString(in.upper) {
		return models.Service{}, false
	}
	return itemService(in, outfitsPrefix, outfitsWord, "OUTFITS", true)
}

func carsRule(in ruleInput) (models.Service, bool) {
	if isCashAndCars(in.upper) || !carsPresent.MatchString(in.upper) {
		return models.Service{}, false
	}
	return itemService(in, carsPrefix, carsWord, "CARS", false)
}

func bunkerRule(in ruleInput) (models.Service, bool) {
	// "FULL BUNKER UNLOCK" contains "BUNKER UNLOCK"
	if !strings.Contains(in.upper, "BUNKER UNLOCK") {
		return models.Service{}, false
	}
	return fixedService(models.CategoryBunker, in.console), true
}

func rankRule(in ruleInput) (models.Service, bool) {
	if !strings.Contains(in.upper, "RANK") {
		return models.Service{}, false
	}
	quantity := rangeOrSingle(in.upper, rankRangeAfter, rankRangeBefore, rankSingleAfter, rankSingleBefore)
	if quantity == "" {
		return models.Service{}, false
	}
	return models.Service{
		Service:  "Rank " + quantity,
		Console:  in.console,
		Quantity: quantity,
		Category: models.CategoryRank,
	}, true
}

func levelRule(in ruleInput) (models.Service, bool) {
	if !strings.Contains(in.upper, "LVL") && !strings.Contains(in.upper, "LEVEL") {
		return models.Service{}, false
	}
	quantity := rangeOrSingle(in.upper, levelRangeAfter, levelRangeBefore, levelSingleAfter, levelSingleBefore)
	if quantity == "" {
		return models.Service{}, false
	}
	return models.Service{
		Service:  "LVL " + quantity,
		Console:  in.console,
		Quantity: quantity,
		Category: models.CategoryLevel,
	}, true
}

func cashRule(in ruleInput) (models.Service, bool) {
	if !strings.Contains(in.upper, "CASH") {
		return models.Service{}, false
	}

	quantity := ""
	for _, re := range []*regexp.Regexp{cashMillions, cashAdjacent, cashBare} {
		if m := re.FindStringSubmatch(in.upper); m != nil {
			quantity = m[1]
			break
		}
	}
	if quantity == "" {
		return models.Service{}, false
	}
	if !strings.HasSuffix(quantity, "M") && !strings.HasSuffix(quantity, "K") {
		quantity += "M"
	}

	category := models.CategoryOnlyCash
	if isCashAndCars(in.upper) {
		category = models.CategoryCashAndCars
	}
	return models.Service{
		Service:  category,
		Console:  in.console,
		Quantity: quantity,
		Category: category,
	}, true
}

func isCashAndCars(upper string) bool {
	return strings.Contains(upper, "CASH") && strings.Contains(upper, "CARS")
}

func fixedService(category string, console models.Console) models.Service {
	return models.Service{
		Service:  category,
		Console:  console,
		Quantity: "",
		Category: category,
	}
}

// itemService builds "<WORDS> <ITEM>" from the words preceding the item keyword,
// with console tokens and a leading MODDED removed. With no words left the
// category falls back to "MODDED <ITEM>".
func itemService(in ruleInput, prefix, word *regexp.Regexp, defaultWord string, normalizeTrio bool) (models.Service, bool) {
	m := prefix.FindStringSubmatch(in.upper)
	if m == nil {
		return models.Service{}, false
	}

	itemWord := word.FindString(in.upper)
	if itemWord == "" {
		itemWord = defaultWord
	}

	words := strings.TrimSpace(m[1])
	for _, re := range consolePrefixes {
		words = re.ReplaceAllString(words, "")
	}
	if normalizeTrio {
		words = trioPrefix.ReplaceAllString(words, "TRIO OF ")
	}
	words = strings.TrimSpace(moddedPrefix.ReplaceAllString(words, ""))

	category := "MODDED " + itemWord
	if words != "" {
		category = words + " " + itemWord
	}

	return models.Service{
		Service:  category,
		Console:  in.console,
		Quantity: "",
		Category: category,
	}, true
}

// rangeOrSingle tries an explicit range on either side of the keyword, then a single number
func rangeOrSingle(upper string, rangeAfter, rangeBefore, singleAfter, singleBefore *regexp.Regexp) string {
	for _, re := range []*regexp.Regexp{rangeAfter, rangeBefore} {
		if m := re.FindStringSubmatch(upper); m != nil {
			return m[1] + "-" + m[2]
		}
	}
	for _, re := range []*regexp.Regexp{singleAfter, singleBefore} {
		if m := re.FindStringSubmatch(upper); m != nil {
			return m[1]
		}
	}
	return ""
}
