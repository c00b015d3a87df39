package processor

import (
	"MissionLaunches/src/config"
	"testing"

	"github.com/biter777/countries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Get(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	assert.Greater(t, reg.Len(), 240)

	tests := []struct {
		key  string
		want string
	}{
		{"USA", "USA"},
		{"Russian Federation", "RUS"},
		{"China", "CHN"},
		{"Kazakhstan", "KAZ"},
		{"Iran, Islamic Republic of", "IRN"},
		{"Korea, Democratic People's Republic of", "PRK"},
		{"Korea, Republic of", "KOR"},
		{"france", "FRA"},
		{" Japan ", "JPN"},
		{"NA", "NAM"},
		{"840", "USA"},
		{"br", "BRA"},
	}
	for _, tt := range tests {
		c, err := reg.Get(tt.key)
		require.NoError(t, err, tt.key)
		assert.Equal(t, tt.want, c.Alpha3, tt.key)
	}
}

func TestDefaultRegistry_NotFound(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	for _, key := range []string{"Russia", "Yellow Sea", "", "Gran Canaria"} {
		_, err := reg.Get(key)
		assert.ErrorIs(t, err, ErrCountryNotFound, key)
	}
}

func TestDefaultRegistry_MapName(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	c, ok := reg.ByAlpha3("rus")
	require.True(t, ok)
	assert.Equal(t, "Russian Federation", c.Name)
	assert.Equal(t, "Russia", c.MapName())

	c, ok = reg.ByAlpha3("USA")
	require.True(t, ok)
	assert.Equal(t, "United States", c.MapName())

	_, ok = reg.ByAlpha3("XXX")
	assert.False(t, ok)

	assert.Equal(t, "Chad", Country{Name: "Chad"}.MapName())
}

// 修正表的每个目标都必须能在查询表中找到
func TestDefaultOverridesResolve(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	for from, to := range config.DefaultDataConfig().CountryOverrides {
		_, err := reg.Get(to)
		assert.NoError(t, err, "%s -> %s", from, to)
	}
}

func TestNewRegistry(t *testing.T) {
	_, err := NewRegistry(countries.CountryCode(9999))
	assert.Error(t, err)

	reg, err := NewRegistry(countries.CHN, countries.KOR)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	c, err := reg.Get("cn")
	require.NoError(t, err)
	assert.Equal(t, "China", c.MapName())
	assert.Equal(t, "156", c.Numeric)

	// 倒装写法和原名都能查到
	for _, key := range []string{"Korea, Republic of", "Republic of Korea", "KR", "410"} {
		c, err := reg.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, "KOR", c.Alpha3, key)
	}
	kor, ok := reg.ByAlpha3("kor")
	require.True(t, ok)
	assert.Equal(t, "Korea", kor.MapName())

	// 库里的别名不参与匹配
	_, err = reg.Get("South Korea")
	assert.ErrorIs(t, err, ErrCountryNotFound)
}

func TestIsoForms(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"Iran (Islamic Republic of)", []string{"Iran, Islamic Republic of"}},
		{"Democratic People's Republic of Korea", []string{"Korea, Democratic People's Republic of"}},
		{"Russian Federation", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isoForms(tt.name), tt.name)
	}
}
