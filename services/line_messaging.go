package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"thaitour_go/config"

	"github.com/line/line-bot-sdk-go/linebot"
	"github.com/sirupsen/logrus"
)

const maxDeparturesPerReply = 5

// LineMessagingService answers LINE Official Account chats with trip departures.
type LineMessagingService struct {
	Bot     *linebot.Client
	catalog *CatalogService
	site    string
}

// NewLineMessagingService returns a service with a nil Bot when LINE is not configured.
func NewLineMessagingService(catalog *CatalogService) *LineMessagingService {
	svc := &LineMessagingService{catalog: catalog, site: "Thai Tour"}
	if config.AppConfig == nil {
		return svc
	}
	svc.site = config.AppConfig.SiteName

	secret, token := config.AppConfig.LineChannelSecret, config.AppConfig.LineChannelToken
	if secret == "" || token == "" {
		logrus.Warn("LINE Messaging API disabled: missing LINE_CHANNEL_SECRET or LINE_CHANNEL_ACCESS_TOKEN")
		return svc
	}

	bot, err := linebot.New(secret, token)
	if err != nil {
		logrus.WithError(err).Error("Cannot create LINE bot client")
		return svc
	}
	svc.Bot = bot
	return svc
}

func (s *LineMessagingService) Enabled() bool {
	return s.Bot != nil
}

// Reply sends a text reply for a webhook event.
func (s *LineMessagingService) Reply(replyToken, text string) error {
	if s.Bot == nil {
		return fmt.Errorf("LINE bot client is not initialized")
	}
	if _, err := s.Bot.ReplyMessage(replyToken, linebot.NewTextMessage(text)).Do(); err != nil {
		return fmt.Errorf("LINE reply failed: %w", err)
	}
	return nil
}

// AnswerText builds the reply to a chat message naming a country.
func (s *LineMessagingService) AnswerText(ctx context.Context, text string) (string, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return HelpMessage(s.site), nil
	}

	country, err := s.catalog.FindCountry(ctx, query)
	if errors.Is(err, ErrNotFound) {
		return HelpMessage(s.site), nil
	}
	if err != nil {
		return "", err
	}

	departures, err := s.catalog.UpcomingDepartures(ctx, country.ID, maxDeparturesPerReply)
	if err != nil {
		return "", err
	}
	name := country.NameTh
	if country.Flag != "" {
		name = country.Flag + " " + name
	}
	return FormatDeparturesMessage(name, departures), nil
}

// FormatDeparturesMessage renders departures as a chat message, one block per departure.
func FormatDeparturesMessage(countryName string, departures []Departure) string {
	if len(departures) == 0 {
		return fmt.Sprintf("%s\nยังไม่มีรอบเดินทางที่เปิดรับในขณะนี้", countryName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s รอบเดินทางที่ใกล้ที่สุด", countryName)
	for _, d := range departures {
		fmt.Fprintf(&b, "\n\n%s\n%s (%s)\n%s · %s",
			d.Trip.Title,
			d.Schedule.DateRangeDisplay,
			d.Schedule.DurationDisplay,
			d.Schedule.SlotsDisplay,
			d.Trip.PriceDisplay,
		)
	}
	return b.String()
}

// HelpMessage is sent when the chat text does not name a known country.
func HelpMessage(site string) string {
	return fmt.Sprintf("สวัสดีค่ะ %s\nพิมพ์ชื่อประเทศหรือรหัสประเทศ เช่น \"ญี่ปุ่น\" หรือ \"JP\" เพื่อดูรอบเดินทาง", site)
}
