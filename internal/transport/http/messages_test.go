package http

import (
	"encoding/json"
	"errors"
	"testing"
)

func decodeRaw(t *testing.T, raw string) (command, error) {
	t.Helper()
	var msg inboundMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return decodeCommand(msg)
}

func TestDecodeAskCoercesLooseFields(t *testing.T) {
	cmd, err := decodeRaw(t, `{"type":"ask_question","payload":{"text":"Q1","options":["A",2,true,null],"durationSec":"45","correctIndex":1}}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ask, ok := cmd.(askCommand)
	if !ok {
		t.Fatalf("expected askCommand, got %T", cmd)
	}
	req := ask.Request
	if req.Text != "Q1" || req.DurationSec != 45 {
		t.Fatalf("unexpected request %+v", req)
	}
	want := []string{"A", "2", "true", ""}
	if len(req.Options) != len(want) {
		t.Fatalf("expected %d options, got %v", len(want), req.Options)
	}
	for i := range want {
		if req.Options[i] != want[i] {
			t.Fatalf("option %d: expected %q, got %q", i, want[i], req.Options[i])
		}
	}
	if req.CorrectIndex == nil || *req.CorrectIndex != 1 {
		t.Fatalf("expected correct index 1, got %v", req.CorrectIndex)
	}
}

func TestDecodeAskDefaultsMissingFields(t *testing.T) {
	cmd, err := decodeRaw(t, `{"type":"ask_question","payload":{"options":"not-a-list","durationSec":"soon","correctIndex":1.5}}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	req := cmd.(askCommand).Request
	if req.Options != nil || req.DurationSec != 0 || req.CorrectIndex != nil {
		t.Fatalf("expected zero values for unusable fields, got %+v", req)
	}
}

func TestDecodeAskTreatsBooleanDurationAsMissing(t *testing.T) {
	cmd, err := decodeRaw(t, `{"type":"ask_question","payload":{"text":"Q1","options":["A"],"durationSec":true}}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := cmd.(askCommand).Request.DurationSec; got != 0 {
		t.Fatalf("expected boolean duration to fall back to default, got %v", got)
	}
}

func TestDecodeSubmitAnswer(t *testing.T) {
	cases := []struct {
		payload string
		want    int
		ok      bool
	}{
		{payload: `{"optionIndex":1}`, want: 1, ok: true},
		{payload: `{"optionIndex":"2"}`, want: 2, ok: true},
		{payload: `{"optionIndex":0.5}`, ok: false},
		{payload: `{"optionIndex":"x"}`, ok: false},
		{payload: `{}`, ok: false},
		{payload: `null`, ok: false},
	}
	for _, tc := range cases {
		cmd, err := decodeRaw(t, `{"type":"submit_answer","payload":`+tc.payload+`}`)
		if !tc.ok {
			if err == nil {
				t.Fatalf("%s: expected error, got %+v", tc.payload, cmd)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: decode: %v", tc.payload, err)
		}
		if got := cmd.(answerCommand).OptionIndex; got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.payload, tc.want, got)
		}
	}
}

func TestDecodeRegisterWithoutPayload(t *testing.T) {
	cmd, err := decodeRaw(t, `{"type":"register"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	reg := cmd.(registerCommand)
	if reg.Name != "" || reg.Role != "" {
		t.Fatalf("expected empty register fields, got %+v", reg)
	}
}

func TestDecodeKickStringifiesTarget(t *testing.T) {
	cmd, err := decodeRaw(t, `{"type":"kick","payload":{"userId":42}}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := cmd.(kickCommand).UserID; got != "42" {
		t.Fatalf("expected stringified id, got %q", got)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := decodeRaw(t, `{"type":"live_results","payload":{}}`)
	if !errors.Is(err, errUnknownType) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}
