package tracking

import "strings"

// botSignatures известные подстроки User-Agent ботов и кроулеров.
// Порядок не важен: достаточно первого совпадения.
var botSignatures = []string{
	"bot",
	"crawler",
	"spider",
	"slurp",
	"scrape",
	"facebookexternalhit",
	"whatsapp",
	"telegram",
	"skypeuripreview",
	"preview",
	"headless",
	"lighthouse",
	"pingdom",
	"uptimerobot",
	"curl/",
	"wget/",
	"python-requests",
	"go-http-client",
	"okhttp",
	"dataminr",
}

// matchBot сверяет User-Agent со списком сигнатур без учета регистра.
func matchBot(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	lowered := strings.ToLower(userAgent)
	for _, sig := range botSignatures {
		if strings.Contains(lowered, sig) {
			return true
		}
	}
	return false
}
