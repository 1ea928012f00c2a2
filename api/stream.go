package api

import "time"

// MsgType is a message type for streaming responses
type MsgType string

const (
	StartSubmitMsg   MsgType = "submit_start"
	FinishSubmitMsg  MsgType = "submit_finish"
	FailSubmitMsg    MsgType = "submit_fail"
	UpdateVerdictMsg MsgType = "verdict_update"
	FinishWatchMsg   MsgType = "watch_finish"
)

// Text size constraints for streamed messages
const (
	MaxTextHeight = 40
	MaxTextWidth  = 80
)

// Header is the common header for all streaming response messages
type Header struct {
	Uuid    string  `json:"uuid"`
	MsgType MsgType `json:"msg_type"`
}

type StartSubmit struct {
	Header
	Problem     string `json:"problem"`
	StartedTime string `json:"started_time"`
}

type FinishSubmit struct {
	Header
	Submission *Submission `json:"submission"`
}

type FailSubmit struct {
	Header
	ErrorMessage string `json:"error_message"`
}

type UpdateVerdict struct {
	Header
	Verdict *Verdict `json:"verdict"`
}

type FinishWatch struct {
	Header
}

func NewHeader(uuid string, msgType MsgType) Header {
	return Header{
		Uuid:    uuid,
		MsgType: msgType,
	}
}

func NewStartSubmit(uuid, problem string) StartSubmit {
	return StartSubmit{
		Header:      NewHeader(uuid, StartSubmitMsg),
		Problem:     problem,
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewFinishSubmit(uuid string, sub *Submission) FinishSubmit {
	return FinishSubmit{
		Header:     NewHeader(uuid, FinishSubmitMsg),
		Submission: sub,
	}
}

func NewFailSubmit(uuid, msg string) FailSubmit {
	return FailSubmit{
		Header:       NewHeader(uuid, FailSubmitMsg),
		ErrorMessage: msg,
	}
}

// NewUpdateVerdict trims the compilation message before it goes on the wire.
func NewUpdateVerdict(uuid string, v *Verdict) UpdateVerdict {
	if v != nil {
		c := *v
		c.CompilationMessage = TrimToRect(c.CompilationMessage, MaxTextHeight, MaxTextWidth)
		v = &c
	}
	return UpdateVerdict{
		Header:  NewHeader(uuid, UpdateVerdictMsg),
		Verdict: v,
	}
}

func NewFinishWatch(uuid string) FinishWatch {
	return FinishWatch{Header: NewHeader(uuid, FinishWatchMsg)}
}
