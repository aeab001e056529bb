package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/amaumene/gomovies/internal/cache"
	"github.com/amaumene/gomovies/internal/constants"
	"github.com/amaumene/gomovies/internal/models"
	"github.com/amaumene/gomovies/pkg/logger"
)

// SearchFunc runs one title search.
type SearchFunc func(ctx context.Context, query string, page int) (*models.MoviePage, error)

// SearchState is what a typeahead box renders.
type SearchState struct {
	Query       string                `json:"query"`
	Results     []models.MovieSummary `json:"results"`
	Suggestions []models.MovieSummary `json:"suggestions"`
	Loading     bool                  `json:"loading"`
	Error       string                `json:"error,omitempty"`
}

// Searcher debounces keystrokes into search calls. Every scheduled call gets
// a token and only the response carrying the newest token is applied.
type Searcher struct {
	search SearchFunc
	delay  time.Duration
	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	timer  *time.Timer
	token  uint64
	state  SearchState
	closed bool
}

func NewSearcher(search SearchFunc, delay time.Duration, log logger.Logger) *Searcher {
	if delay <= 0 {
		delay = constants.SearchDebounce
	}
	if log == nil {
		log = logger.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Searcher{
		search: search,
		delay:  delay,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
		state: SearchState{
			Results:     []models.MovieSummary{},
			Suggestions: []models.MovieSummary{},
		},
	}
}

// Update records the latest query. A pending search is cancelled and a new
// one is scheduled after the debounce delay. An empty query clears the
// results at once without calling the API.
func (s *Searcher) Update(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.token++
	s.state.Query = query

	if strings.TrimSpace(query) == "" {
		s.state.Results = []models.MovieSummary{}
		s.state.Suggestions = []models.MovieSummary{}
		s.state.Loading = false
		s.state.Error = ""
		return
	}

	token := s.token
	s.timer = time.AfterFunc(s.delay, func() {
		s.run(token, query)
	})
}

func (s *Searcher) run(token uint64, query string) {
	s.mu.Lock()
	if s.closed || token != s.token {
		s.mu.Unlock()
		return
	}
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()

	s.logger.Debugf("[Search] searching %q", query)
	page, err := s.search(s.ctx, query, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || token != s.token {
		s.logger.Debugf("[Search] discarding stale response for %q", query)
		return
	}
	s.state.Loading = false
	if err != nil {
		s.logger.Errorf("[Search] error searching %q: %v", query, err)
		s.state.Error = constants.MsgSearchUnavailable
		s.state.Results = []models.MovieSummary{}
		s.state.Suggestions = []models.MovieSummary{}
		return
	}
	var total int
	if page != nil {
		total = len(page.Results)
	}
	s.state.Results = page.Truncate(total)
	s.state.Suggestions = page.Truncate(constants.MaxSuggestions)
}

// State returns a copy of the current search state.
func (s *Searcher) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close stops the pending timer and abandons any in-flight call.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.cancel()
}

// SearchSessions keeps one Searcher per guest session. Idle searchers are
// evicted and closed.
type SearchSessions struct {
	searchers *cache.LRUCache[*Searcher]
	search    SearchFunc
	delay     time.Duration
	logger    logger.Logger
}

func NewSearchSessions(search SearchFunc, delay time.Duration, log logger.Logger) *SearchSessions {
	if log == nil {
		log = logger.New()
	}
	s := &SearchSessions{
		search: search,
		delay:  delay,
		logger: log,
	}
	s.searchers = cache.New[*Searcher](constants.SearchSessionCapacity, constants.SearchSessionTTL).
		OnEvict(func(session string, searcher *Searcher) {
			s.logger.Debugf("[Search] closing searcher for session %s", session)
			searcher.Close()
		})
	return s
}

// Get returns the searcher of session, creating it on first use.
func (s *SearchSessions) Get(session string) *Searcher {
	return s.searchers.GetOrCreate(session, func() *Searcher {
		return NewSearcher(s.search, s.delay, s.logger)
	})
}

// Lookup returns the searcher of session if one is alive.
func (s *SearchSessions) Lookup(session string) (*Searcher, bool) {
	return s.searchers.Get(session)
}

// StartCleanup evicts expired searchers every interval until ctx is done.
func (s *SearchSessions) StartCleanup(ctx context.Context, every time.Duration) {
	s.searchers.StartCleanup(ctx, every)
}

func (s *SearchSessions) Len() int {
	return s.searchers.Len()
}

// Close closes every searcher.
func (s *SearchSessions) Close() {
	s.searchers.Clear()
}
