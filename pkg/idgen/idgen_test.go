package idgen

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	t.Run("20 URL-safe characters", func(t *testing.T) {
		id := NewID()
		assert.Len(t, id, 20)
		assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]+$`), id)
	})

	t.Run("sortable by creation time", func(t *testing.T) {
		prev := NewID()
		for i := 0; i < 100; i++ {
			id := NewID()
			assert.Greater(t, id, prev)
			prev = id
		}
	})

	t.Run("unique under concurrency", func(t *testing.T) {
		var (
			mu  sync.Mutex
			wg  sync.WaitGroup
			ids = make(map[string]struct{})
		)
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					id := NewGenerationID()
					mu.Lock()
					ids[id] = struct{}{}
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Len(t, ids, 1600)
	})
}

func TestNewRequestID(t *testing.T) {
	assert.True(t, IsValid(NewRequestID()))
}

func TestNewReportName(t *testing.T) {
	name := NewReportName()
	assert.True(t, strings.HasPrefix(name, "valuation_report_"))
	assert.True(t, IsValid(strings.TrimPrefix(name, "valuation_report_")))
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{NewID(), true},
		{"", false},
		{"short", false},
		{strings.ToUpper(NewID()), false},
		{"!!!!!!!!!!!!!!!!!!!!", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValid(tt.in), tt.in)
	}
}
