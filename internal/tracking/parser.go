// Package tracking разбирает сырые атрибуты запроса (IP, User-Agent,
// Referer, Accept-Language) в типизированные сигналы. Разбор чистый и
// тотальный: какой бы мусор ни пришел, вернется валидное значение
// TrackingSignals с полями "unknown", а не ошибка.
package tracking

import (
	"net"
	"net/netip"
	"strings"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/mileusna/useragent"
	"github.com/sirupsen/logrus"
)

// Parser разборщик клиентских сигналов. Единственный I/O — чтение
// локальной гео-базы, без сети.
type Parser struct {
	geo *geoResolver
}

// New создает парсер. Пустой geoDBPath отключает геолокацию.
func New(geoDBPath string, logger *logrus.Logger) (*Parser, error) {
	geo, err := newGeoResolver(geoDBPath, logger.WithField("module", "tracking/geo"))
	if err != nil {
		return nil, err
	}
	return &Parser{geo: geo}, nil
}

// Parse превращает сырые заголовки в сигналы. Никогда не возвращает ошибку.
func (p *Parser) Parse(rawIP, rawUserAgent, referer, acceptLanguage string) models.TrackingSignals {
	signals := models.TrackingSignals{
		Device:   models.DeviceUnknown,
		Browser:  models.UnknownValue,
		OS:       models.UnknownValue,
		Referer:  strings.TrimSpace(referer),
		Language: parseLanguage(acceptLanguage),
	}

	ip := normalizeIP(rawIP)
	signals.IP = ip.addr
	p.geo.fill(&signals, ip.netIP)

	fillUserAgent(&signals, rawUserAgent)
	return signals
}

// Close освобождает гео-базу.
func (p *Parser) Close() error {
	return p.geo.close()
}

type normalizedIP struct {
	addr  string
	netIP net.IP
}

// normalizeIP приводит IP к каноническому виду: ::ffff:-маппинг IPv4
// разворачивается в обычный IPv4, IPv6 loopback приводится к 127.0.0.1.
// Нераспарсившийся адрес возвращается пустым.
func normalizeIP(rawIP string) normalizedIP {
	addr, err := netip.ParseAddr(strings.TrimSpace(rawIP))
	if err != nil {
		return normalizedIP{}
	}
	if addr.Is4In6() {
		addr = addr.Unmap()
	}
	if addr.IsLoopback() {
		return normalizedIP{addr: "127.0.0.1", netIP: net.IPv4(127, 0, 0, 1)}
	}
	return normalizedIP{addr: addr.String(), netIP: addr.AsSlice()}
}

func fillUserAgent(signals *models.TrackingSignals, rawUserAgent string) {
	rawUserAgent = strings.TrimSpace(rawUserAgent)
	signals.IsBot = matchBot(rawUserAgent)
	if rawUserAgent == "" {
		return
	}

	ua := useragent.Parse(rawUserAgent)
	if ua.Bot {
		signals.IsBot = true
	}

	switch {
	case ua.Tablet:
		signals.Device = models.DeviceTablet
	case ua.Mobile:
		signals.Device = models.DeviceMobile
	case ua.Desktop:
		signals.Device = models.DeviceDesktop
	}

	if ua.Name != "" {
		signals.Browser = ua.Name
	}
	signals.BrowserVersion = ua.Version
	if ua.OS != "" {
		signals.OS = ua.OS
	}
	signals.OSVersion = ua.OSVersion
}

// parseLanguage берет первый язык из Accept-Language, отбрасывая вес.
func parseLanguage(acceptLanguage string) string {
	first, _, _ := strings.Cut(acceptLanguage, ",")
	lang, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(lang)
}
