package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"wayfarer/internal/geomath"
	"wayfarer/internal/types"
)

var shibuya = types.Point{Lat: 35.6580, Lng: 139.7016}

type fakeSearcher struct {
	queries []Query
	results func(q Query) ([]Result, error)
}

func (f *fakeSearcher) Search(_ context.Context, q Query) ([]Result, error) {
	f.queries = append(f.queries, q)
	return f.results(q)
}

func hit(id string) Result {
	return Result{Place: types.Place{Name: id}, PlaceID: id}
}

func TestNearby(t *testing.T) {
	f := &fakeSearcher{results: func(Query) ([]Result, error) {
		return []Result{hit("a"), hit("b"), hit("c")}, nil
	}}
	svc := NewService(f)

	_, err := svc.Nearby(context.Background(), "  ", shibuya, true, 0)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	res, err := svc.Nearby(context.Background(), " ramen ", shibuya, true, 2)
	require.NoError(t, err)
	assert.Len(t, res, 2)
	require.Len(t, f.queries, 1)
	assert.Equal(t, "ramen", f.queries[0].Text)
	assert.True(t, f.queries[0].HasNear)
	assert.Equal(t, uint(nearbyRadius), f.queries[0].Radius)
}

func TestAlongRoute_MergesAndSkipsFailures(t *testing.T) {
	line := []types.Point{shibuya}
	for i := 1; i <= 6; i++ {
		line = append(line, geomath.Offset(shibuya, float64(i)*1500, 0))
	}
	calls := 0
	f := &fakeSearcher{results: func(Query) ([]Result, error) {
		calls++
		switch calls {
		case 1:
			return []Result{hit("a"), hit("b")}, nil
		case 2:
			return nil, errors.New("quota")
		default:
			return []Result{hit("b"), hit("c")}, nil
		}
	}}

	res, err := NewService(f).AlongRoute(context.Background(), "gas station", line, 0)
	require.NoError(t, err)
	var ids []string
	for _, r := range res {
		ids = append(ids, r.PlaceID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.LessOrEqual(t, len(f.queries), maxAlongRouteProbes)
	assert.Equal(t, line[len(line)-1], f.queries[len(f.queries)-1].Near)
}

func TestAlongRoute_NothingFound(t *testing.T) {
	f := &fakeSearcher{results: func(Query) ([]Result, error) { return nil, nil }}
	_, err := NewService(f).AlongRoute(context.Background(), "museum", []types.Point{shibuya}, 0)
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestProbes(t *testing.T) {
	assert.Nil(t, probes(nil))
	assert.Equal(t, []types.Point{shibuya}, probes([]types.Point{shibuya}))

	near := geomath.Offset(shibuya, 100, 90)
	assert.Equal(t, []types.Point{shibuya, near}, probes([]types.Point{shibuya, near}))
}

func TestGoogleSearcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "coffee", r.URL.Query().Get("query"))
		assert.NotEmpty(t, r.URL.Query().Get("location"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"name":"Blue Bottle","formatted_address":"Shibuya","place_id":"p1","rating":4.4,"user_ratings_total":120,"geometry":{"location":{"lat":35.659,"lng":139.70}}}]}`))
	}))
	defer srv.Close()

	g, err := NewGoogleSearcher("test-key", "en", "jp", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)
	res, err := g.Search(context.Background(), Query{Text: "coffee", Near: shibuya, HasNear: true, Radius: 500})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Blue Bottle", res[0].Name)
	assert.Equal(t, "p1", res[0].PlaceID)
	assert.InDelta(t, 35.659, res[0].Point.Lat, 1e-9)
}

func TestGoogleSearcher_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	g, err := NewGoogleSearcher("test-key", "en", "", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = g.Search(context.Background(), Query{Text: "unicorn"})
	assert.ErrorIs(t, err, ErrNoResults)
}
