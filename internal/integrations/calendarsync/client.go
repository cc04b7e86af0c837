package calendarsync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger is the logging surface the client needs.
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client fetches externally blocked intervals (a barber's personal calendar)
// from the calendar-sync collaborator. The collaborator's OAuth and provider
// details live entirely on its side.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient creates a calendar-sync client.
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetBusyIntervals returns the barber's externally blocked intervals for the
// given date.
func (c *Client) GetBusyIntervals(ctx context.Context, barberID int64, date time.Time) ([]BusyInterval, error) {
	url := fmt.Sprintf("%s/internal/barbers/%d/busy?date=%s", c.baseURL, barberID, date.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// No calendar linked for this barber.
		return []BusyInterval{}, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var busy BusyResponse
	if err := json.NewDecoder(resp.Body).Decode(&busy); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return busy.Intervals, nil
}

// GetBusyIntervalsWithGracefulDegradation wraps GetBusyIntervals so that an
// unavailable collaborator never fails an availability computation: the
// caller receives ErrServiceDegraded and computes without the busy signal.
func (c *Client) GetBusyIntervalsWithGracefulDegradation(ctx context.Context, barberID int64, date time.Time) ([]BusyInterval, error) {
	intervals, err := c.GetBusyIntervals(ctx, barberID, date)
	if err != nil {
		c.log.Error("CalendarSync unavailable, proceeding without busy data for barber_id=%d: %v", barberID, err)
		return nil, fmt.Errorf("%w: barber_id=%d, error=%v", ErrServiceDegraded, barberID, err)
	}
	return intervals, nil
}
