package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetFromCache(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	c.Set("plan", "PREMIUM", time.Minute)
	c.Set("count", 3, time.Minute)

	tests := []struct {
		name    string
		key     string
		want    string
		wantHit bool
	}{
		{name: "hit with matching type", key: "plan", want: "PREMIUM", wantHit: true},
		{name: "hit with wrong type", key: "count", want: "", wantHit: false},
		{name: "miss", key: "absent", want: "", wantHit: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GetFromCache[string](c, tt.key)
			assert.Equal(t, tt.wantHit, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetFromCache_Delete(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	c.Set("plan", "FREE", time.Minute)
	c.Delete("plan")

	_, ok := GetFromCache[string](c, "plan")
	assert.False(t, ok)

	_, ok = GetFromCache[string](nil, "plan")
	assert.False(t, ok)
}
