package processor

import (
	"MissionLaunches/src/config"
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrichedSample(t *testing.T) (dataframe.DataFrame, *Enricher) {
	t.Helper()
	e, _ := newTestEnricher(t, config.UnmappedFail)
	df, err := e.Enrich(sampleFrame())
	require.NoError(t, err)
	return df, e
}

func biggerFrame(t *testing.T) dataframe.DataFrame {
	t.Helper()
	e, _ := newTestEnricher(t, config.UnmappedFail)
	df, err := e.Enrich(rawFrame([][]string{
		{"SpaceX", "LC-39A, Kennedy Space Center, Florida, USA", "Fri Aug 07, 2020 05:12 UTC", "50.0", "Success", "StatusActive"},
		{"CASC", "Site 9401 (SLS-2), Jiuquan Satellite Launch Center, China", "Thu Aug 06, 2020 04:01 UTC", "29.75", "Success", "StatusActive"},
		{"SpaceX", "SLC-40, Cape Canaveral AFS, Florida, USA", "Tue Aug 04, 2020 23:57 UTC", "50.0", "Success", "StatusActive"},
		{"Roscosmos", "Site 200/39, Baikonur Cosmodrome, Kazakhstan", "Thu Jul 30, 2020 21:25 UTC", "65.0", "Success", "StatusActive"},
		{"CASC", "LC-9, Taiyuan Satellite Launch Center, China", "Sat Jul 25, 2020 03:13 UTC", "", "Failure", "StatusActive"},
		{"RVSN USSR", "Site 1/5, Baikonur Cosmodrome, Kazakhstan", "Fri Oct 04, 1957 19:28 UTC", "", "Success", "StatusRetired"},
		{"US Navy", "LC-18A, Cape Canaveral AFS, Florida, USA", "Fri Dec 06, 1957 16:44 UTC", "", "Failure", "StatusRetired"},
		{"NASA", "LC-39A, Kennedy Space Center, Florida, USA", "Mon Jul 08, 2011 15:29 UTC", "450.0", "Success", "StatusRetired"},
		{"NASA", "LC-39A, Kennedy Space Center, Florida, USA", "Fri May 16, 2011 12:56 UTC", "450.0", "Success", "StatusRetired"},
		{"RVSN USSR", "Site 43/3, Plesetsk Cosmodrome, Russia", "Thu Mar 14, 1985 07:10 UTC", "", "Failure", "StatusRetired"},
	}))
	require.NoError(t, err)
	return df
}

func TestEndToEndSample(t *testing.T) {
	df, e := enrichedSample(t)

	orgs, err := LaunchesPerOrganization(df)
	require.NoError(t, err)
	assert.Equal(t, CountRows{{"NASA", 2}, {"Roscosmos", 1}}, orgs)

	failures, err := FailuresPerCountry(df)
	require.NoError(t, err)
	assert.Equal(t, CountryCounts{{"Kazakhstan", "KAZ", 1}}, failures)

	remapped := e.ColdWarRemap(df)
	failures, err = FailuresPerCountry(remapped)
	require.NoError(t, err)
	assert.Equal(t, CountryCounts{{"Russian Federation", "RUS", 1}}, failures)

	rivals, err := RivalLaunchesPerYear(remapped, e.dc.ColdWar)
	require.NoError(t, err)
	assert.Equal(t, YearCountryCounts{
		{1980, "Russian Federation", 1},
		{1985, "Russian Federation", 1},
	}, rivals)
}

func TestTotalsMatchRowCount(t *testing.T) {
	df := biggerFrame(t)

	orgs, err := LaunchesPerOrganization(df)
	require.NoError(t, err)
	assert.Equal(t, df.Nrow(), orgs.Total())
	assert.Equal(t, CountRow{"CASC", 2}, orgs[0])

	countries, err := LaunchesPerCountry(df)
	require.NoError(t, err)
	assert.Equal(t, df.Nrow(), countries.Total())
	assert.Equal(t, CountryCount{"USA", "USA", 5}, countries[0])
	assert.Equal(t, 5, countries.Max())

	years, err := LaunchesPerYear(df)
	require.NoError(t, err)
	assert.Equal(t, df.Nrow(), years.Total())
	assert.Equal(t, YearCounts{{1957, 2}, {1985, 1}, {2011, 2}, {2020, 5}}, years)
}

func TestFailuresPerCountry(t *testing.T) {
	failures, err := FailuresPerCountry(biggerFrame(t))
	require.NoError(t, err)
	assert.Equal(t, CountryCounts{
		{"China", "CHN", 1},
		{"Russian Federation", "RUS", 1},
		{"USA", "USA", 1},
	}, failures)

	// 没有失败记录
	df, _ := enrichedSample(t)
	none, err := FailuresPerCountry(df.Subset([]int{0}))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPricedLaunches(t *testing.T) {
	df := biggerFrame(t)
	priced, err := PricedLaunches(df)
	require.NoError(t, err)

	prices := Prices(priced)
	assert.Equal(t, []float64{450, 450, 65, 50, 50, 29.75}, prices)

	// 价格为 0 或缺失的行不计入
	ex, _ := enrichedSample(t)
	priced, err = PricedLaunches(ex)
	require.NoError(t, err)
	assert.Equal(t, 1, priced.Nrow())

	_, err = PricedLaunches(sampleFrame())
	assert.Error(t, err, "price must be cleaned first")
}

func TestSpendingPerOrganization(t *testing.T) {
	spending, err := SpendingPerOrganization(biggerFrame(t))
	require.NoError(t, err)
	assert.Equal(t, Spendings{
		{"NASA", 900},
		{"SpaceX", 100},
		{"Roscosmos", 65},
		{"CASC", 29.75},
	}, spending)

	frame := spending.Frame()
	assert.Equal(t, []string{ColOrganization, ColSpending}, frame.Names())
	assert.Equal(t, 4, frame.Nrow())
}

func TestRivalLaunchesPerYear(t *testing.T) {
	df := biggerFrame(t)
	e, _ := newTestEnricher(t, config.UnmappedFail)

	rivals, err := RivalLaunchesPerYear(e.ColdWarRemap(df), e.dc.ColdWar)
	require.NoError(t, err)
	assert.Equal(t, YearCountryCounts{
		{1957, "Russian Federation", 1},
		{1957, "USA", 1},
		{1985, "Russian Federation", 1},
	}, rivals)

	years := rivals.Years()
	assert.Equal(t, []int{1957, 1985}, years)
	usa, present := rivals.Pivot("USA", years)
	assert.Equal(t, []int{1, 0}, usa)
	assert.Equal(t, []bool{true, false}, present)

	// 未做冷战修正时，哈萨克斯坦不属于对手国家
	rivals, err = RivalLaunchesPerYear(df, e.dc.ColdWar)
	require.NoError(t, err)
	assert.Equal(t, YearCountryCounts{
		{1957, "USA", 1},
		{1985, "Russian Federation", 1},
	}, rivals)
}

func TestMeanPricePerYear(t *testing.T) {
	means, err := MeanPricePerYear(biggerFrame(t))
	require.NoError(t, err)
	require.Len(t, means, 2)
	assert.Equal(t, YearPrice{2011, 450}, means[0])
	assert.Equal(t, 2020, means[1].Year)
	assert.InDelta(t, (50+29.75+50+65)/4.0, means[1].Mean, 1e-9)

	frame := means.Frame(3)
	assert.Equal(t, []string{ColYear, ColAvgPrice, ColMovAvg}, frame.Names())
}

func TestMovingAverage(t *testing.T) {
	values := []float64{10, 20, 60, 10, 5, 40}
	got := MovingAverage(values, 3)
	require.Len(t, got, len(values))

	defined := 0
	for i, v := range got {
		if i < 2 {
			assert.True(t, math.IsNaN(v), "point %d must be undefined", i)
			continue
		}
		defined++
		assert.InDelta(t, (values[i]+values[i-1]+values[i-2])/3, v, 1e-9)
	}
	assert.Equal(t, len(values)-2, defined)

	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 1))
	for _, v := range MovingAverage([]float64{1, 2}, 3) {
		assert.True(t, math.IsNaN(v))
	}
	assert.Empty(t, MovingAverage(nil, 3))
}

func TestHistogram(t *testing.T) {
	bins, err := Histogram([]float64{1, 2, 3, 4, 10, math.NaN()}, 3)
	require.NoError(t, err)
	require.Len(t, bins, 3)
	assert.Equal(t, []int{3, 1, 1}, []int{bins[0].Count, bins[1].Count, bins[2].Count})
	assert.Equal(t, 1.0, bins[0].Lo)
	assert.Equal(t, 4.0, bins[0].Hi)

	total := 0
	bins, err = Histogram(Prices(biggerFrame(t)), 20)
	require.NoError(t, err)
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 6, total)

	bins, err = Histogram([]float64{5, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, bins[0].Count)
	assert.Equal(t, 2, bins[1].Count)

	bins, err = Histogram(nil, 20)
	require.NoError(t, err)
	assert.Nil(t, bins)

	_, err = Histogram([]float64{1}, 0)
	assert.Error(t, err)
}

func TestValueCounts(t *testing.T) {
	counts, err := ValueCounts(biggerFrame(t), ColMissionStatus)
	require.NoError(t, err)
	assert.Equal(t, CountRows{{"Success", 7}, {"Failure", 3}}, counts)

	_, err = ValueCounts(biggerFrame(t), "Nope")
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"NASA", "NASA", "CASC"}, series.String, "Organization"),
		series.New([]string{"USA", "USA", ""}, series.String, "Country"),
	)
	s := Summary(df)
	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 2, s.Cols)
	assert.Equal(t, []string{"Organization", "Country"}, s.Columns)
	assert.True(t, s.HasMissing)
	assert.Equal(t, 1, s.MissingByCol["Country"])
	assert.Equal(t, 1, s.Duplicates)
	assert.True(t, s.HasDuplicates)

	s = Summary(df.Subset([]int{0, 2}))
	assert.False(t, s.HasDuplicates)
}

func TestHierarchy(t *testing.T) {
	nodes, err := Hierarchy(biggerFrame(t), ColCountry, ColOrganization, ColMissionStatus)
	require.NoError(t, err)

	total := 0
	for _, n := range nodes {
		total += n.Value
	}
	assert.Equal(t, 10, total)

	usa := nodes[0]
	assert.Equal(t, "USA", usa.Name)
	assert.Equal(t, 5, usa.Value)
	require.Len(t, usa.Children, 3)
	assert.Equal(t, "NASA", usa.Children[0].Name)
	assert.Equal(t, "SpaceX", usa.Children[1].Name)
	assert.Equal(t, "US Navy", usa.Children[2].Name)
	assert.Equal(t, "Failure", usa.Children[2].Children[0].Name)

	_, err = Hierarchy(biggerFrame(t))
	assert.Error(t, err)
}
