package upstream

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/odds-cache-service/internal/models"
	"github.com/cypherlabdev/odds-cache-service/pkg/pricing"
)

// DefaultEventCount is the number of events a Generator produces per fetch
const DefaultEventCount = 15

type fixture struct {
	home   string
	away   string
	league string
}

var fixtures = map[string][]fixture{
	"basketball": {
		{"Los Angeles Lakers", "Golden State Warriors", "NBA"},
		{"Boston Celtics", "Miami Heat", "NBA"},
		{"Phoenix Suns", "Denver Nuggets", "NBA"},
	},
	"football": {
		{"New England Patriots", "Buffalo Bills", "NFL"},
		{"Kansas City Chiefs", "Dallas Cowboys", "NFL"},
		{"Green Bay Packers", "Chicago Bears", "NFL"},
	},
	"soccer": {
		{"Manchester United", "Liverpool", "EPL"},
		{"Real Madrid", "Barcelona", "La Liga"},
		{"Bayern Munich", "Borussia Dortmund", "Bundesliga"},
	},
	"baseball": {
		{"New York Yankees", "Boston Red Sox", "MLB"},
		{"Los Angeles Dodgers", "San Francisco Giants", "MLB"},
	},
	"hockey": {
		{"Toronto Maple Leafs", "Montreal Canadiens", "NHL"},
		{"Chicago Blackhawks", "Detroit Red Wings", "NHL"},
	},
}

// sports lists the fixture keys in a fixed order so seeded output is reproducible
var sports = []string{"basketball", "football", "soccer", "baseball", "hockey"}

// Bookmakers priced by the Generator
var Bookmakers = []string{"DraftKings", "FanDuel", "BetMGM", "William Hill", "Caesars", "PointsBet"}

// DrawOutcome is the third outcome of football and soccer markets
const DrawOutcome = "Draw"

// Generator is an UpstreamSource producing random but realistic odds.
// It can also simulate latency, failures and empty responses.
type Generator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	count   int
	latency time.Duration
	failure error
	empty   bool
	clock   clockwork.Clock
	logger  zerolog.Logger
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithEventCount sets the number of events per fetch
func WithEventCount(n int) GeneratorOption {
	return func(g *Generator) {
		g.count = n
	}
}

// WithLatency delays every fetch by d
func WithLatency(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.latency = d
	}
}

// WithFailure makes every fetch fail with err
func WithFailure(err error) GeneratorOption {
	return func(g *Generator) {
		g.failure = err
	}
}

// WithEmpty makes every fetch return no events
func WithEmpty() GeneratorOption {
	return func(g *Generator) {
		g.empty = true
	}
}

// WithRand sets the random source, for reproducible output
func WithRand(r *rand.Rand) GeneratorOption {
	return func(g *Generator) {
		g.rng = r
	}
}

// WithGeneratorClock sets the clock used for latency and commence times
func WithGeneratorClock(clock clockwork.Clock) GeneratorOption {
	return func(g *Generator) {
		g.clock = clock
	}
}

// NewGenerator creates a new odds generator
func NewGenerator(logger zerolog.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		count:  DefaultEventCount,
		clock:  clockwork.NewRealClock(),
		logger: logger.With().Str("component", "odds_generator").Logger(),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.rng == nil {
		seed := uint64(g.clock.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	return g
}

// Fetch generates a fresh set of events
func (g *Generator) Fetch(ctx context.Context) ([]models.OddsEvent, error) {
	if g.latency > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrRequestFailed, ctx.Err())
		case <-g.clock.After(g.latency):
		}
	}

	if g.failure != nil {
		return nil, g.failure
	}
	if g.empty {
		return []models.OddsEvent{}, nil
	}

	events := g.Generate(g.count)

	g.logger.Debug().
		Int("event_count", len(events)).
		Msg("generated odds")

	return events, nil
}

// Generate returns count random events
func (g *Generator) Generate(count int) []models.OddsEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now().UTC()
	events := make([]models.OddsEvent, 0, max(count, 0))
	for i := 0; i < count; i++ {
		events = append(events, g.event(now))
	}
	return events
}

func (g *Generator) event(now time.Time) models.OddsEvent {
	sport := sports[g.rng.IntN(len(sports))]
	options := fixtures[sport]
	f := options[g.rng.IntN(len(options))]

	// One hour to one week ahead
	offset := time.Hour + time.Duration(g.rng.Int64N(int64(7*24*time.Hour-time.Hour)))

	return models.OddsEvent{
		ID: fmt.Sprintf("%s_%s_%s_%s_%s",
			sport,
			f.league,
			strings.ReplaceAll(f.home, " ", "_"),
			strings.ReplaceAll(f.away, " ", "_"),
			uuid.NewString(),
		),
		Sport:        sport,
		HomeTeam:     f.home,
		AwayTeam:     f.away,
		CommenceTime: now.Add(offset).Truncate(time.Second),
		Bookmakers:   g.bookmakers(sport, f),
	}
}

// bookmakers picks two to four distinct bookmakers and prices the market for each
func (g *Generator) bookmakers(sport string, f fixture) []models.Bookmaker {
	names := make([]string, len(Bookmakers))
	copy(names, Bookmakers)
	g.rng.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})

	n := 2 + g.rng.IntN(3)
	result := make([]models.Bookmaker, n)
	for i := range result {
		result[i] = models.Bookmaker{
			Name:     names[i],
			Outcomes: g.outcomes(sport, f),
		}
	}
	return result
}

func (g *Generator) outcomes(sport string, f fixture) []models.Outcome {
	switch sport {
	case "football", "soccer":
		home := 0.3 + g.rng.Float64()*0.2
		draw := 0.2 + g.rng.Float64()*0.1
		away := 1 - home - draw
		return []models.Outcome{
			{Name: f.home, Price: price(home)},
			{Name: f.away, Price: price(away)},
			{Name: DrawOutcome, Price: price(draw)},
		}
	default:
		home := 0.3 + g.rng.Float64()*0.4
		return []models.Outcome{
			{Name: f.home, Price: price(home)},
			{Name: f.away, Price: price(1 - home)},
		}
	}
}

func price(probability float64) decimal.Decimal {
	return pricing.PriceFromProbability(decimal.NewFromFloat(probability), pricing.DefaultMarginFactor)
}
