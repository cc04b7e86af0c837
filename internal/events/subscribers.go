package events

// InfoLogger is the logging surface of LogSubscriber.
type InfoLogger interface {
	Info(format string, v ...interface{})
}

// LogSubscriber records every lifecycle event. It stands in for outward
// notification delivery, which is owned by a separate service.
type LogSubscriber struct {
	logger InfoLogger
}

func NewLogSubscriber(logger InfoLogger) *LogSubscriber {
	return &LogSubscriber{logger: logger}
}

// Handle logs the event.
func (s *LogSubscriber) Handle(ev Event) error {
	if ev.PreviousStartTime != nil {
		s.logger.Info("event %s: appointment=%d shop=%d barber=%d %s -> %s",
			ev.Type, ev.AppointmentID, ev.ShopID, ev.BarberID,
			ev.PreviousStartTime.Format("2006-01-02 15:04"), ev.StartTime.Format("2006-01-02 15:04"))
		return nil
	}
	s.logger.Info("event %s: appointment=%d shop=%d barber=%d at %s",
		ev.Type, ev.AppointmentID, ev.ShopID, ev.BarberID, ev.StartTime.Format("2006-01-02 15:04"))
	return nil
}
