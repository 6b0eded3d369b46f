package game

import "time"

// wallTicker backs write pump pings and the registry sweep with real tickers.
type wallTicker struct{}

func (wallTicker) Create(interval time.Duration) <-chan time.Time {
	return time.NewTicker(interval).C
}

func NewTickerGen() PeriodicTickerChannelCreator {
	return wallTicker{}
}
