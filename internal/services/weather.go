package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songrec/internal/shared"
)

const (
	ipifyBaseURL       = "https://api.ipify.org"
	ipAPIBaseURL       = "http://ip-api.com"
	openWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	defaultCountry     = "GB"
)

// WeatherService implements [WeatherClient] by chaining three public lookups:
// the caller's public IP, the city for that IP, and the current weather for the city.
type WeatherService struct {
	ip      *APIService
	geo     *APIService
	weather *APIService
	apiKey  string
	country string
	logger  *log.Logger
}

// WeatherOpts configures a [WeatherService]. Empty URLs use the public endpoints.
type WeatherOpts struct {
	APIKey     string
	Country    string
	IPURL      string
	GeoURL     string
	WeatherURL string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewWeatherService creates a location and weather client.
func NewWeatherService(opts WeatherOpts) *WeatherService {
	if opts.IPURL == "" {
		opts.IPURL = ipifyBaseURL
	}
	if opts.GeoURL == "" {
		opts.GeoURL = ipAPIBaseURL
	}
	if opts.WeatherURL == "" {
		opts.WeatherURL = openWeatherBaseURL
	}
	if opts.Country == "" {
		opts.Country = defaultCountry
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &WeatherService{
		ip:      NewAPIService(opts.IPURL, opts.HTTPClient),
		geo:     NewAPIService(opts.GeoURL, opts.HTTPClient),
		weather: NewAPIService(opts.WeatherURL, opts.HTTPClient),
		apiKey:  opts.APIKey,
		country: opts.Country,
		logger:  opts.Logger.With("service", "weather"),
	}
}

// PublicIP returns the caller's public address.
func (s *WeatherService) PublicIP(ctx context.Context) (string, error) {
	resp, err := s.ip.Get(ctx, "", url.Values{"format": {"json"}})
	if err != nil {
		return "", fmt.Errorf("%w: ip lookup: %v", shared.ErrLocationLookup, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("%w: ip lookup returned %d", shared.ErrLocationLookup, resp.StatusCode)
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := resp.Decode(&body); err != nil {
		return "", fmt.Errorf("%w: ip lookup: %v", shared.ErrLocationLookup, err)
	}
	if body.IP == "" {
		return "", fmt.Errorf("%w: ip lookup returned no address", shared.ErrLocationLookup)
	}
	return body.IP, nil
}

// CityForIP resolves ip to a city name.
func (s *WeatherService) CityForIP(ctx context.Context, ip string) (string, error) {
	resp, err := s.geo.Get(ctx, "/json/"+url.PathEscape(ip), nil)
	if err != nil {
		return "", fmt.Errorf("%w: geolocation: %v", shared.ErrLocationLookup, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("%w: geolocation returned %d", shared.ErrLocationLookup, resp.StatusCode)
	}

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		City    string `json:"city"`
	}
	if err := resp.Decode(&body); err != nil {
		return "", fmt.Errorf("%w: geolocation: %v", shared.ErrLocationLookup, err)
	}
	if body.Status != "success" || body.City == "" {
		return "", fmt.Errorf("%w: geolocation for %s failed: %s", shared.ErrLocationLookup, ip, body.Message)
	}
	return body.City, nil
}

// CurrentCity chains [WeatherService.PublicIP] and [WeatherService.CityForIP].
func (s *WeatherService) CurrentCity(ctx context.Context) (string, error) {
	ip, err := s.PublicIP(ctx)
	if err != nil {
		return "", err
	}
	city, err := s.CityForIP(ctx, ip)
	if err != nil {
		return "", err
	}
	s.logger.Debug("located caller", "city", city)
	return city, nil
}

// CurrentWeather returns the weather for "<city>,<country>".
func (s *WeatherService) CurrentWeather(ctx context.Context, city string) (*Weather, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: openweather api key", shared.ErrMissingCredentials)
	}

	query := url.Values{
		"q":     {city + "," + s.country},
		"appid": {s.apiKey},
	}
	resp, err := s.weather.Get(ctx, "", query)
	if err != nil {
		return nil, fmt.Errorf("%w: weather: %v", shared.ErrLocationLookup, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: weather for %s returned %d", shared.ErrLocationLookup, city, resp.StatusCode)
	}

	var body struct {
		Name    string `json:"name"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: weather: %v", shared.ErrLocationLookup, err)
	}
	if len(body.Weather) == 0 {
		return nil, fmt.Errorf("%w: no conditions reported for %s", shared.ErrLocationLookup, city)
	}

	w := &Weather{
		City:        body.Name,
		Condition:   body.Weather[0].Main,
		Description: strings.ToLower(body.Weather[0].Description),
	}
	if w.City == "" {
		w.City = city
	}
	return w, nil
}
