// Package monitoring serves the state of a running benchmark over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/bandwidth/bench"
	"github.com/sarchlab/bandwidth/hooking"
	"github.com/sarchlab/bandwidth/idgen"
	"github.com/sarchlab/bandwidth/monitoring/web"
)

// Monitor turns a benchmark process into a server that reports the progress
// and the results of its runs. It is a hook: attach it to every Benchmark it
// should follow.
type Monitor struct {
	portNumber      int
	openBrowser     bool
	profileDuration time.Duration
	ids             idgen.Generator

	lock         sync.Mutex
	benchmarks   []*bench.Benchmark
	progressBars []*ProgressBar
	runningBars  map[*bench.Benchmark]*ProgressBar
	results      []bench.Result
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		profileDuration: time.Second,
		ids:             &idgen.Sequential{},
		runningBars:     make(map[*bench.Benchmark]*ProgressBar),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor page in a browser.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterBenchmark registers a benchmark to be monitored. The monitor also
// attaches itself to the benchmark as a hook.
func (m *Monitor) RegisterBenchmark(b *bench.Benchmark) {
	m.lock.Lock()
	m.benchmarks = append(m.benchmarks, b)
	m.lock.Unlock()

	b.AcceptHook(m)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.ids.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.lock.Lock()
	defer m.lock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Func follows the runs of the benchmarks the monitor is attached to.
func (m *Monitor) Func(ctx hooking.HookCtx) {
	b, ok := ctx.Domain.(*bench.Benchmark)
	if !ok {
		return
	}

	switch ctx.Pos {
	case bench.HookPosRunStart:
		info := ctx.Item.(bench.RunInfo)
		bar := m.CreateProgressBar(
			fmt.Sprintf("%s %s (%s)", b.Name(), info.Kind, info.Strategy),
			uint64(info.Steps))
		bar.IncrementInProgress(1)

		m.lock.Lock()
		m.runningBars[b] = bar
		m.lock.Unlock()
	case bench.HookPosStepEnd:
		m.lock.Lock()
		m.results = append(m.results, ctx.Item.(bench.Result))
		bar := m.runningBars[b]
		m.lock.Unlock()

		if bar == nil {
			return
		}

		step := ctx.Detail.(bench.Step)
		if step.Index+1 < step.Total {
			bar.IncrementFinished(1)
		} else {
			bar.MoveInProgressToFinished(1)
		}
	case bench.HookPosRunEnd:
		m.lock.Lock()
		bar := m.runningBars[b]
		delete(m.runningBars, b)
		m.lock.Unlock()

		if bar != nil {
			m.CompleteProgressBar(bar)
		}
	}
}

// Handler returns the HTTP API of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_benchmarks", m.listBenchmarks)
	r.HandleFunc("/api/benchmark/{name}", m.listBenchmarkDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/results", m.listResults)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring benchmark with %s\n", url)

	go func() {
		err := http.Serve(listener, m.Handler())
		dieOnErr(err)
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			log.Printf("open browser: %v", err)
		}
	}

	return url
}

func (m *Monitor) listBenchmarks(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	names := make([]string, 0, len(m.benchmarks))
	for _, b := range m.benchmarks {
		names = append(names, b.Name())
	}
	m.lock.Unlock()

	writeJSON(w, names)
}

func (m *Monitor) listBenchmarkDetails(w http.ResponseWriter, r *http.Request) {
	b := m.findBenchmarkOr404(w, mux.Vars(r)["name"])
	if b == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(b)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	BenchmarkName string `json:"benchmark_name,omitempty"`
	FieldName     string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	b := m.findBenchmarkOr404(w, req.BenchmarkName)
	if b == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(b)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findBenchmarkOr404(
	w http.ResponseWriter,
	name string,
) *bench.Benchmark {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, b := range m.benchmarks {
		if b.Name() == name {
			return b
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Benchmark not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	bars := make([]progressBarRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.lock.Unlock()

	writeJSON(w, bars)
}

type resultRsp struct {
	Strategy    string  `json:"strategy"`
	Rank        int     `json:"rank"`
	Elements    int     `json:"elements"`
	Bytes       int     `json:"bytes"`
	Repeat      int     `json:"repeat"`
	Seconds     float64 `json:"seconds"`
	MBPerSecond float64 `json:"mb_per_second"`
}

func (m *Monitor) listResults(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	results := make([]resultRsp, 0, len(m.results))
	for _, res := range m.results {
		results = append(results, resultRsp{
			Strategy:    res.Strategy,
			Rank:        res.Rank,
			Elements:    res.Elements,
			Bytes:       res.Bytes,
			Repeat:      res.Repeat,
			Seconds:     res.Seconds,
			MBPerSecond: res.MBPerSecond(),
		})
	}
	m.lock.Unlock()

	writeJSON(w, results)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	process, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(m.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
