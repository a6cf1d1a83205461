package tui

import "time"

// MsgStageStart announces a stage and the number of items it will process.
type MsgStageStart struct {
	Stage     string
	Total     int
	StartTime time.Time
}

// MsgItemComplete reports one finished item of a stage.
type MsgItemComplete struct {
	Stage   string
	Item    string
	EndTime time.Time
	Err     error
}

// MsgStageComplete reports the end of a stage.
type MsgStageComplete struct {
	Stage   string
	EndTime time.Time
	Err     error
}

// MsgTick advances the running indicator.
type MsgTick struct{}
