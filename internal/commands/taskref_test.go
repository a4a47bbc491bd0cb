package commands

import (
	"errors"
	"testing"
)

func TestParseTaskID(t *testing.T) {
	tests := []struct {
		args    []string
		want    int64
		wantErr string
	}{
		{[]string{"5"}, 5, ""},
		{[]string{"#12"}, 12, ""},
		{[]string{"0"}, 0, "invalid task id: 0"},
		{[]string{"-3"}, 0, "invalid task id: -3"},
		{[]string{"a1"}, 0, "invalid task id: a1"},
		{[]string{"99999999999999999999"}, 0, "invalid task id: 99999999999999999999"},
		{[]string{"1", "2"}, 0, "unexpected argument: 2"},
	}
	for _, tt := range tests {
		got, err := ParseTaskID(tt.args)
		if tt.wantErr != "" {
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("ParseTaskID(%v) err=%v, want %q", tt.args, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseTaskID(%v)=(%d, %v), want %d", tt.args, got, err, tt.want)
		}
	}
}

func TestParseTaskID_Missing(t *testing.T) {
	if _, err := ParseTaskID(nil); !errors.Is(err, ErrTaskIDRequired) {
		t.Errorf("err=%v", err)
	}
}

func TestParseTeamID(t *testing.T) {
	if id, err := ParseTeamID([]string{"team-7"}); err != nil || id != "team-7" {
		t.Errorf("ParseTeamID=(%q, %v)", id, err)
	}
	if _, err := ParseTeamID([]string{" "}); !errors.Is(err, ErrTeamIDRequired) {
		t.Errorf("blank id err=%v", err)
	}
}
