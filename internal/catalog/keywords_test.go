package catalog

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"guided historic walking tour", KeywordHistoric},
		{"Freedom Trail walk", KeywordHistoric},
		{"Stand-up night at the club", KeywordComedy},
		{"Sushi Making Class", KeywordEducation},
		{"Robotics workshop", KeywordEducation},
		{"Planetarium show", KeywordMuseum},
		{"Museum of Science lecture", KeywordEducation},
		{"Harbor cruise", KeywordSightseeing},
		{"Cherry Blossom Viewing", KeywordSightseeing},
		{"Kayaking on the Charles", KeywordAdventure},
		{"Central Park Picnic", KeywordRelaxing},
		{"Broadway Show", KeywordSightseeing},
		{"", KeywordSightseeing},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.text))
		})
	}
}

func TestCategorize_AlwaysClosedSet(t *testing.T) {
	allowed := make(map[string]bool)
	for _, c := range KeywordCategories() {
		allowed[c] = true
	}
	assert.Len(t, allowed, 7)

	for _, text := range []string{"xyz", "tea ceremony", "bike and hike", "colonial house", "gallery walk"} {
		assert.True(t, allowed[Categorize(text)], text)
	}
}

func TestAddKeywords(t *testing.T) {
	in := strings.NewReader("Company Name,Experience Description,Location\n" +
		"Freedom Guides,guided historic walking tour,\"Boston, USA\"\n" +
		"Paddle Co,,\"Boston, USA\"\n" +
		"Laugh Factory,Open mic comedy,\"Boston, USA\"\n")

	var out bytes.Buffer
	n, err := AddKeywords(in, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"Company Name", "Experience Description", "Location", "Keyword"}, records[0])
	assert.Equal(t, KeywordHistoric, records[1][3])
	// no description: the company name is categorized instead
	assert.Equal(t, KeywordSightseeing, records[2][3])
	assert.Equal(t, KeywordComedy, records[3][3])
}

func TestAddKeywords_OverwritesExistingColumn(t *testing.T) {
	in := strings.NewReader("Experience,Keyword\nKayak tour of the harbor,Relaxing\n")

	var out bytes.Buffer
	_, err := AddKeywords(in, &out)
	require.NoError(t, err)

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Experience", "Keyword"}, records[0])
	assert.Equal(t, KeywordHistoric, records[1][1])
}

func TestAddKeywords_EmptyInput(t *testing.T) {
	_, err := AddKeywords(strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}
