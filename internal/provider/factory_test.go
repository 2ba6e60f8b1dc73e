package provider

import (
	"strings"
	"testing"
	"time"
)

func TestNew_DefaultsToKeyword(t *testing.T) {
	p, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p.Name() != "keyword" {
		t.Errorf("Expected keyword provider, got %s", p.Name())
	}
}

func TestNew_SelectsByName(t *testing.T) {
	tests := []struct {
		config Config
		want   string
	}{
		{Config{Name: "keyword"}, "keyword"},
		{Config{Name: "Ollama"}, "ollama"},
		{Config{Name: "openai", APIKey: "sk-test"}, "openai"},
		{Config{Name: "anthropic", APIKey: "sk-ant-test"}, "anthropic"},
		{Config{Name: "claude", APIKey: "sk-ant-test"}, "anthropic"},
	}

	for _, tt := range tests {
		p, err := New(tt.config)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", tt.config.Name, err)
		}
		if p.Name() != tt.want {
			t.Errorf("New(%q): expected %s, got %s", tt.config.Name, tt.want, p.Name())
		}
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Config{Name: "hal9000"})
	if err == nil {
		t.Fatal("Expected error for unknown provider, got nil")
	}
	if !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("Expected unknown provider error, got %v", err)
	}
}

func TestNew_HostedProvidersRequireKey(t *testing.T) {
	if _, err := New(Config{Name: "openai"}); err == nil {
		t.Error("Expected error for openai without API key")
	}
	if _, err := New(Config{Name: "anthropic"}); err == nil {
		t.Error("Expected error for anthropic without API key")
	}
}

func TestPacingDelay(t *testing.T) {
	keyword, err := New(Config{Name: "keyword"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	anthropic, err := New(Config{Name: "anthropic", APIKey: "sk-ant-test"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if d := PacingDelay(keyword, 0); d != 0 {
		t.Errorf("Expected no pacing for keyword, got %v", d)
	}
	if d := PacingDelay(anthropic, 0); d != DefaultCallDelay {
		t.Errorf("Expected default pacing for anthropic, got %v", d)
	}
	if d := PacingDelay(keyword, 2*time.Second); d != 2*time.Second {
		t.Errorf("Expected configured delay to win, got %v", d)
	}
}
