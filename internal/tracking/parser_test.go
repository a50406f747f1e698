package tracking

import (
	"testing"

	"github.com/fsdevblog/qrshort/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	chromeDesktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	iphoneUA        = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1"
	googlebotUA     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := New("", logrus.New())
	require.NoError(t, err)
	return p
}

func TestParser_Parse_Desktop(t *testing.T) {
	p := newTestParser(t)

	signals := p.Parse("203.0.113.7", chromeDesktopUA, "https://qr.example.com/poster", "ru-RU,ru;q=0.9,en;q=0.8")

	assert.Equal(t, "203.0.113.7", signals.IP)
	assert.Equal(t, models.DeviceDesktop, signals.Device)
	assert.Equal(t, "Chrome", signals.Browser)
	assert.Equal(t, "Windows", signals.OS)
	assert.Equal(t, "ru-RU", signals.Language)
	assert.Equal(t, "https://qr.example.com/poster", signals.Referer)
	assert.False(t, signals.IsBot)
}

func TestParser_Parse_Mobile(t *testing.T) {
	p := newTestParser(t)

	signals := p.Parse("203.0.113.7", iphoneUA, "", "")

	assert.Equal(t, models.DeviceMobile, signals.Device)
	assert.Equal(t, "iOS", signals.OS)
	assert.False(t, signals.IsBot)
}

// Parse тотальный: мусор на входе дает валидные сигналы, а не ошибку.
func TestParser_Parse_GarbageInput(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name string
		ip   string
		ua   string
		lang string
	}{
		{name: "empty everything"},
		{name: "binary ua", ip: "not-an-ip", ua: "\x00\x01\xff garbage \xfe"},
		{name: "overlong ua", ua: string(make([]byte, 4096))},
		{name: "whitespace", ip: "   ", ua: "   ", lang: " ;; , "},
		{name: "half header", ip: "999.999.999.999", ua: "Mozilla/", lang: ";q=0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := p.Parse(tt.ip, tt.ua, "", tt.lang)
			assert.Equal(t, "", signals.IP)
			assert.Equal(t, models.DeviceUnknown, signals.Device)
		})
	}
}

func TestParser_Parse_BotClassification(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name  string
		ua    string
		isBot bool
	}{
		{name: "googlebot", ua: googlebotUA, isBot: true},
		{name: "curl", ua: "curl/8.4.0", isBot: true},
		{name: "python requests", ua: "python-requests/2.31.0", isBot: true},
		{name: "go http client", ua: "Go-http-client/2.0", isBot: true},
		{name: "headless chrome", ua: "Mozilla/5.0 HeadlessChrome/120.0.0.0", isBot: true},
		{name: "telegram preview", ua: "TelegramBot (like TwitterBot)", isBot: true},
		{name: "uppercase signature", ua: "MYSUPERCRAWLER/1.0", isBot: true},
		{name: "regular chrome", ua: chromeDesktopUA, isBot: false},
		{name: "empty", ua: "", isBot: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := p.Parse("203.0.113.7", tt.ua, "", "")
			assert.Equal(t, tt.isBot, signals.IsBot)
		})
	}
}

func TestNormalizeIP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain ipv4", in: "203.0.113.7", want: "203.0.113.7"},
		{name: "mapped ipv4", in: "::ffff:203.0.113.7", want: "203.0.113.7"},
		{name: "ipv6", in: "2001:db8::1", want: "2001:db8::1"},
		{name: "ipv6 loopback", in: "::1", want: "127.0.0.1"},
		{name: "ipv4 loopback", in: "127.0.0.1", want: "127.0.0.1"},
		{name: "with spaces", in: "  203.0.113.7  ", want: "203.0.113.7"},
		{name: "garbage", in: "not-an-ip", want: ""},
		{name: "empty", in: "", want: ""},
		{name: "ip with port", in: "203.0.113.7:1234", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeIP(tt.in).addr)
		})
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "ru-RU,ru;q=0.9,en;q=0.8", want: "ru-RU"},
		{in: "en-US", want: "en-US"},
		{in: "fr;q=0.7", want: "fr"},
		{in: "", want: ""},
		{in: " , ", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLanguage(tt.in))
	}
}

// Гео без сконфигурированной базы: поля пустые, падений нет.
func TestParser_Parse_NoGeoDB(t *testing.T) {
	p := newTestParser(t)

	signals := p.Parse("203.0.113.7", chromeDesktopUA, "", "")
	assert.Empty(t, signals.Country)
	assert.Empty(t, signals.City)
	require.NoError(t, p.Close())
}
