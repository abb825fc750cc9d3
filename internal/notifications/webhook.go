package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kjannette/tradedesk-backend/internal/httputil"
	"github.com/kjannette/tradedesk-backend/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultBotName = "TradeDesk"

// rupees formats amounts with Indian digit grouping.
var rupees = message.NewPrinter(language.MustParse("en-IN"))

type Sender struct {
	webhookURL string
	botName    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewSender(webhookURL, botName string) *Sender {
	if botName == "" {
		botName = DefaultBotName
	}
	return &Sender{
		webhookURL: webhookURL,
		botName:    botName,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
	}
}

// Send logs msg and, when a webhook is configured, posts it. Delivery
// failures are logged, never returned.
func (s *Sender) Send(msg string) {
	formatted := fmt.Sprintf("[%s] %s", s.botName, msg)
	fmt.Printf("[%s] %s\n", time.Now().UTC().Format(time.RFC3339), formatted)

	if s.webhookURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.post(ctx, formatted); err != nil {
		fmt.Printf("[NOTIFY ERROR] Failed to send notification: %v\n", err)
	}
}

func (s *Sender) post(ctx context.Context, msg string) error {
	body, err := json.Marshal(s.formatPayload(msg))
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := httputil.Do(ctx, s.httpClient, s.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *Sender) formatPayload(msg string) map[string]string {
	if strings.Contains(s.webhookURL, "discord") {
		return map[string]string{
			"content":  msg,
			"username": s.botName,
		}
	}
	return map[string]string{
		"text":     fmt.Sprintf("`%s`", msg),
		"username": s.botName,
	}
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}

// NotifyAnalysis announces an analysis run, e.g.
// "AI signal: BUY TCS (week) at 82% confidence. <summary>".
func (s *Sender) NotifyAnalysis(run *models.AnalysisRun) {
	s.Send(FormatAnalysis(run))
}

func FormatAnalysis(run *models.AnalysisRun) string {
	return fmt.Sprintf("AI signal: %s %s (%s) at %.0f%% confidence. %s",
		strings.ToUpper(string(run.Recommendation)), strings.Join(run.Symbols, ", "),
		run.TimeRange, run.Confidence*100, run.Summary)
}

// NotifyTrade announces a newly recorded or closed trade.
func (s *Sender) NotifyTrade(t *models.Trade) {
	s.Send(FormatTrade(t))
}

func FormatTrade(t *models.Trade) string {
	entry := rupees.Sprintf("₹%.2f", t.EntryPrice.InexactFloat64())
	if t.Status != models.StatusClosed || !t.PnL.Valid {
		return fmt.Sprintf("Trade opened: %s %s x%d @ %s",
			strings.ToUpper(t.Side), t.Symbol, t.Quantity, entry)
	}
	return fmt.Sprintf("Trade closed: %s %s x%d, %s -> %s, P&L %s (%s%%)",
		strings.ToUpper(t.Side), t.Symbol, t.Quantity, entry,
		rupees.Sprintf("₹%.2f", t.ExitPrice.Decimal.InexactFloat64()),
		rupees.Sprintf("%+.2f", t.PnL.Decimal.InexactFloat64()),
		t.PnLPercent.Decimal.StringFixed(2))
}
