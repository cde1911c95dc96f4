package timing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "narration.wav")
	if err := os.WriteFile(path, []byte("RIFF fake"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func alignerFor(t *testing.T, handler http.Handler) (*WhisperAligner, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	return NewWhisperAligner(srv.URL, 5*time.Second), srv.Close
}

func TestExtractInvalidAudio(t *testing.T) {
	e := NewExtractor(nil)
	_, err := e.Extract(context.Background(), "x.wav", "some words", 0)
	if !errors.Is(err, ErrInvalidAudio) {
		t.Fatalf("Expected ErrInvalidAudio, got %v", err)
	}
}

func TestExtractFallsBackWithoutAligner(t *testing.T) {
	e := NewExtractor(nil)
	words, err := e.Extract(context.Background(), "x.wav", "alpha beta", 5.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 2 {
		t.Fatalf("Expected 2 words, got %d", len(words))
	}
	for _, w := range words {
		if w.Confidence != EstimateConfidence {
			t.Errorf("Expected estimate confidence, got %f", w.Confidence)
		}
	}
}

func TestExtractRetriesOnceThenSucceeds(t *testing.T) {
	// First alignment call fails transiently, the retry succeeds: the job
	// must use the retried data and never touch the estimator.
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/align", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"words":[
			{"word":"hello","start":0.1,"end":0.6,"score":0.95},
			{"word":"world","start":0.7,"end":1.2,"score":0.9}
		]}`))
	})

	aligner, closeSrv := alignerFor(t, mux)
	defer closeSrv()

	e := NewExtractor(aligner)
	e.RetryDelay = time.Millisecond

	words, err := e.Extract(context.Background(), writeTestAudio(t), "Hello world", 2.0)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("Expected exactly 2 alignment calls, got %d", calls)
	}
	if len(words) != 2 {
		t.Fatalf("Expected 2 words, got %d", len(words))
	}
	if words[0].Start != 0.1 || words[0].Confidence != 0.95 {
		t.Errorf("Expected aligned data for word 0, got %+v", words[0])
	}
	if words[0].Confidence == EstimateConfidence {
		t.Error("Fallback estimator should not have been used")
	}
}

func TestExtractFallsBackAfterRepeatedFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/align", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	aligner, closeSrv := alignerFor(t, mux)
	defer closeSrv()

	e := NewExtractor(aligner)
	e.RetryDelay = time.Millisecond

	words, err := e.Extract(context.Background(), writeTestAudio(t), "alpha beta gamma", 6.0)
	if err != nil {
		t.Fatalf("Repeated alignment failure must degrade, not fail: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("Expected 3 words, got %d", len(words))
	}
	for _, w := range words {
		if w.Confidence != EstimateConfidence {
			t.Errorf("Expected estimator output, got confidence %f", w.Confidence)
		}
	}
}

func TestExtractInterpolatesMissingWords(t *testing.T) {
	// The aligner drops "brown"; it must get interpolated between its
	// neighbors with zero confidence, preserving word order.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/align", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"words":[
			{"word":"the","start":0.0,"end":0.4,"score":0.9},
			{"word":"quick","start":0.5,"end":1.0,"score":0.9},
			{"word":"fox","start":2.0,"end":2.5,"score":0.9}
		]}`))
	})

	aligner, closeSrv := alignerFor(t, mux)
	defer closeSrv()

	e := NewExtractor(aligner)
	e.RetryDelay = time.Millisecond

	words, err := e.Extract(context.Background(), writeTestAudio(t), "The quick brown fox", 3.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 4 {
		t.Fatalf("Expected 4 words, got %d", len(words))
	}

	brown := words[2]
	if brown.Confidence != 0 {
		t.Errorf("Interpolated word should carry zero confidence, got %f", brown.Confidence)
	}
	if brown.Start < 1.0 || brown.End > 2.0 {
		t.Errorf("Interpolated span [%f, %f] should fall inside gap [1.0, 2.0]", brown.Start, brown.End)
	}
	if words[3].Start < brown.End {
		t.Errorf("Word order broken: fox starts %f before brown ends %f", words[3].Start, brown.End)
	}
}

func TestWhisperAlignerUnavailable(t *testing.T) {
	aligner := NewWhisperAligner("http://127.0.0.1:1", 200*time.Millisecond)
	if aligner.Available(context.Background()) {
		t.Error("Expected unreachable service to be unavailable")
	}
}

func TestWhisperAlignerMalformedResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/align", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})
	aligner, closeSrv := alignerFor(t, mux)
	defer closeSrv()

	_, err := aligner.Align(context.Background(), writeTestAudio(t), "text")
	if !errors.Is(err, ErrAlignmentUnavailable) {
		t.Fatalf("Expected ErrAlignmentUnavailable, got %v", err)
	}
}
