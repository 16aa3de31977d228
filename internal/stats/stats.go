package stats

import (
	"encoding/json"
	"expvar"
	"net/http"
	"sync"
	"time"
)

const (
	NumActiveClients       = "NumActiveClients"
	NumActiveSubscriptions = "NumActiveSubscriptions"
	NumFeedEvents          = "NumFeedEvents"
	NumWaitlistForwarded   = "NumWaitlistForwarded"
)

type StatsProvider interface {
	Incr(name string)
	Decr(name string)
	RegisterMetric(name string)
	Run()
}

type StatsUpdater struct {
	vars       *expvar.Map
	updateChan chan *metricsUpdateReq
	stopOnce   sync.Once
}

type metricsUpdateReq struct {
	name  string
	value int
}

var (
	publishOnce sync.Once
	published   *expvar.Map
)

// Handler serves the registered metrics as a flat JSON object.
func (su *StatsUpdater) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		expvarData := make(map[string]any)
		su.vars.Do(func(kv expvar.KeyValue) {
			var value any
			json.Unmarshal([]byte(kv.Value.String()), &value)
			expvarData[kv.Key] = value
		})

		json.NewEncoder(w).Encode(expvarData)
	})
}

// NewStatsUpdater creates a new stats updater instance. The underlying map is
// published once per process under "community-stats".
func NewStatsUpdater() *StatsUpdater {
	publishOnce.Do(func() {
		published = expvar.NewMap("community-stats")
	})
	published.Init()

	su := &StatsUpdater{
		vars:       published,
		updateChan: make(chan *metricsUpdateReq, 512),
	}
	su.initializeMetrics()

	return su
}

func (su *StatsUpdater) initializeMetrics() {
	startTime := time.Now()
	su.vars.Set("Uptime", expvar.Func(func() any {
		return time.Since(startTime).Milliseconds()
	}))
}

func (su *StatsUpdater) updateMetrics() {
	for req := range su.updateChan {
		metric := su.vars.Get(req.name)
		if metric == nil {
			panic("metric not found: " + req.name)
		}

		metric.(*expvar.Int).Add(int64(req.value))
	}
}

func (su *StatsUpdater) Incr(name string) {
	su.updateChan <- &metricsUpdateReq{name: name, value: 1}
}

func (su *StatsUpdater) Decr(name string) {
	su.updateChan <- &metricsUpdateReq{name: name, value: -1}
}

func (su *StatsUpdater) RegisterMetric(name string) {
	su.vars.Set(name, new(expvar.Int))
}

func (su *StatsUpdater) Run() {
	go su.updateMetrics()
}

func (su *StatsUpdater) Stop() {
	su.stopOnce.Do(func() {
		close(su.updateChan)
	})
}
