package filter

// WildcardFilter opts a destination into everything that passes the
// relevance and blacklist gates.
const WildcardFilter = "all"

// CoreVocabulary gates relevance: an item matching none of these terms is
// not about the monitored franchise at all and is dropped regardless of
// destination filters.
var CoreVocabulary = []string{
	"gundam", "gunpla", "zeon", "zaku", "mobile suit",
	"rx-78", "gundam seed", "seed freedom", "seed destiny",
	"gundam wing", "endless waltz",
	"gundam 00", "double 00",
	"char aznable", "amuro ray",
	"hathaway", "mafty", "xi gundam", "penelope",
	"unicorn gundam", "banshee", "rx-0",
	"witch from mercury", "suletta", "miorine", "aerial",
	"ガンダム", "機動戦士",
}

// Blacklist names franchises that show up constantly in broad anime feeds
// and produce false positives under the core vocabulary (crossover articles,
// "top 10" lists). It takes precedence over every other rule.
var Blacklist = []string{
	"one piece", "dragon ball", "naruto", "bleach",
	"my hero academia", "boku no hero", "hunter x hunter",
	"pokemon", "digimon", "attack on titan",
	"jujutsu", "demon slayer",
}

// CategoryKeywords maps each selectable topic filter to its keyword set.
var CategoryKeywords = map[string][]string{
	"gunpla":  {"gunpla", "model kit", "kit", "ver.ka", "p-bandai", "premium bandai", "hg ", "mg ", "rg ", "pg ", "sd ", "fm ", "re/100"},
	"movies":  {"anime", "episode", "episódio", "episodio", "movie", "film", "pv", "trailer", "teaser", "series", "season", "seed freedom", "witch from mercury", "hathaway"},
	"games":   {"game", "steam", "ps5", "xbox", "gbo2", "battle operation", "breaker", "gundam breaker"},
	"music":   {"music", "ost", "soundtrack", "album", "opening", "ending"},
	"fashion": {"fashion", "clothing", "apparel", "t-shirt", "hoodie", "jacket", "merch"},
}

// FilterOption carries display metadata for one selectable filter.
type FilterOption struct {
	Label string
	Emoji string
}

// FilterOptions lists the filters a destination may select, including the
// wildcard.
var FilterOptions = map[string]FilterOption{
	WildcardFilter: {Label: "Everything", Emoji: "🌟"},
	"gunpla":       {Label: "Gunpla", Emoji: "🤖"},
	"movies":       {Label: "Movies & Anime", Emoji: "🎬"},
	"games":        {Label: "Games", Emoji: "🎮"},
	"music":        {Label: "Music", Emoji: "🎵"},
	"fashion":      {Label: "Fashion", Emoji: "👕"},
}

// agglutinativeKeywords are high-frequency franchise nouns that sources glue
// to adjacent words ("suitgundam", "gunplas"). They match as bare substrings
// because boundary anchors would miss the glued forms. The list is
// empirically grown, not principled; treat it as data.
var agglutinativeKeywords = map[string]struct{}{
	"gundam": {},
	"gunpla": {},
	"zaku":   {},
	"zeon":   {},
}
