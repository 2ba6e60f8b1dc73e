package events

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestOrNop(t *testing.T) {
	if _, ok := OrNop(nil).(NopSink); !ok {
		t.Error("Expected nil to become NopSink")
	}

	sink := NewLogSink(nil)
	if OrNop(sink) != Sink(sink) {
		t.Error("Expected non-nil sink to pass through")
	}
}

func TestLogSink_EmitsStructuredFields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	sink := NewLogSink(logger)

	sink.BatchStarted("risk", 12)
	sink.CallFailed("risk", 3, errors.New("timeout"))
	sink.FellBack("risk", 3)
	sink.BatchFinished("risk", 12, 11, 1, 1)
	sink.StageCompleted("fusion", "5 entities")
	sink.ServiceDegraded("semantic", errors.New("connection refused"))

	entries := hook.AllEntries()
	if len(entries) != 6 {
		t.Fatalf("Expected 6 log entries, got %d", len(entries))
	}

	if entries[0].Data["op"] != "risk" || entries[0].Data["items"] != 12 {
		t.Errorf("Unexpected batch start fields: %v", entries[0].Data)
	}
	if entries[1].Level != logrus.WarnLevel {
		t.Errorf("Expected call failure at warn level, got %v", entries[1].Level)
	}
	if entries[2].Level != logrus.DebugLevel {
		t.Errorf("Expected fallback at debug level, got %v", entries[2].Level)
	}
	if entries[3].Data["fell_back"] != int64(1) {
		t.Errorf("Unexpected batch finish fields: %v", entries[3].Data)
	}
	if entries[5].Level != logrus.WarnLevel || entries[5].Data["service"] != "semantic" {
		t.Errorf("Unexpected degradation entry: %v", entries[5])
	}
}

func TestNopSink_AcceptsEverything(t *testing.T) {
	var sink Sink = NopSink{}
	sink.BatchStarted("risk", 0)
	sink.CallFailed("risk", 0, nil)
	sink.FellBack("risk", 0)
	sink.BatchFinished("risk", 0, 0, 0, 0)
	sink.StageCompleted("", "")
	sink.ServiceDegraded("", nil)
}
