package codec

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rcliao/memory-stitch/internal/model"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		memory model.MemoryContent
		want   string
	}{
		{"title only", model.MemoryContent{Title: "hello"}, "1N1E4Y"},
		{"title and body", model.MemoryContent{Title: "Beach day", Body: "We built a sandcastle"}, "EBF0XC"},
		{"short hash is padded", model.MemoryContent{Body: "a"}, "2P0000"},
		{"min int32 absolute value", model.MemoryContent{Title: "polygenelubricants"}, "ZIK0ZK"},
		{"image bytes follow text", model.MemoryContent{Title: "ab", Images: [][]byte{{1, 2, 3}}}, "1J2N29"},
	}

	g := NewGenerator(DefaultLength)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Generate(tt.memory))
		})
	}
}

func TestGenerate_ImagePrefixOnly(t *testing.T) {
	g := NewGenerator(DefaultLength)
	prefix := bytes.Repeat([]byte{0xAB, 0x12}, ImagePrefixLen/2)

	short := model.MemoryContent{Images: [][]byte{prefix}}
	long := model.MemoryContent{Images: [][]byte{append(append([]byte{}, prefix...), 0xFF, 0xEE, 0xDD)}}

	assert.Equal(t, g.Generate(short), g.Generate(long), "bytes past the prefix must not change the identifier")
}

func TestGenerate_EmptyUsesClock(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	g := NewGenerator(DefaultLength).WithClock(func() time.Time { return at })

	want := g.Generate(model.MemoryContent{Body: "1700000000000"})
	got := g.Generate(model.MemoryContent{})
	assert.Equal(t, want, got)
	assert.Len(t, got, DefaultLength)

	later := g.WithClock(func() time.Time { return at.Add(time.Millisecond) })
	assert.NotEqual(t, got, later.Generate(model.MemoryContent{}))
}

func TestGenerate_Lengths(t *testing.T) {
	m := model.MemoryContent{Title: "hello"}

	assert.Equal(t, "1N1", NewGenerator(3).Generate(m))
	assert.Equal(t, "1N1E4Y0000", NewGenerator(10).Generate(m))
	assert.Equal(t, DefaultLength, NewGenerator(0).Length())
}

func TestGenerate_AlwaysInAlphabet(t *testing.T) {
	g := NewGenerator(DefaultLength)
	for _, title := range []string{"ünïcödé", "日本語のメモ", "😀 emoji", "\x00"} {
		id := g.Generate(model.MemoryContent{Title: title})
		assert.Len(t, id, DefaultLength)
		for i := 0; i < len(id); i++ {
			assert.Contains(t, Alphabet, string(id[i]))
		}
	}
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ABC000", Fit("ABC", 6))
	assert.Equal(t, "ABCDEF", Fit("ABCDEFGH", 6))
	assert.Equal(t, "ABCDEF", Fit("ABCDEF", 6))
}
