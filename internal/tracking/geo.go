package tracking

import (
	"net"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/oschwald/geoip2-golang"
	"github.com/sirupsen/logrus"
)

// geoResolver обертка над локальной базой MaxMind. Нулевое значение
// (база не сконфигурирована) валидно: все гео-поля остаются пустыми.
type geoResolver struct {
	reader *geoip2.Reader
	logger *logrus.Entry
}

func newGeoResolver(dbPath string, logger *logrus.Entry) (*geoResolver, error) {
	if dbPath == "" {
		return &geoResolver{logger: logger}, nil
	}
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &geoResolver{reader: reader, logger: logger}, nil
}

// fill проставляет гео-поля по IP. Любая неудача (приватный адрес,
// неизвестный IP, ошибка базы) оставляет поля пустыми и не является ошибкой.
func (g *geoResolver) fill(signals *models.TrackingSignals, ip net.IP) {
	if g.reader == nil || ip == nil {
		return
	}
	city, err := g.reader.City(ip)
	if err != nil {
		g.logger.WithError(err).Debugf("geo lookup failed for %s", ip)
		return
	}
	signals.Country = city.Country.IsoCode
	signals.City = city.City.Names["en"]
	if len(city.Subdivisions) > 0 {
		signals.Region = city.Subdivisions[0].Names["en"]
	}
	signals.Latitude = city.Location.Latitude
	signals.Longitude = city.Location.Longitude
}

func (g *geoResolver) close() error {
	if g.reader == nil {
		return nil
	}
	return g.reader.Close() //nolint:wrapcheck
}
