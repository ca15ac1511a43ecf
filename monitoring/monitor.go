// Package monitoring serves the progress of running simulations over HTTP.
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

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/sarchlab/pagesim/monitoring/web"
	"github.com/sarchlab/pagesim/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// A RunInfo is what the monitor knows about one simulation.
type RunInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Policy      string `json:"policy"`
	NumPages    int    `json:"num_pages"`
	Retention   string `json:"retention"`
	TotalEvents uint64 `json:"total_events"`
	ReadCount   uint64 `json:"read_count"`
	WriteCount  uint64 `json:"write_count"`
	Done        bool   `json:"done"`
	Error       string `json:"error,omitempty"`
}

// Monitor turns a process that runs simulations into a server that reports
// their progress.
type Monitor struct {
	portNumber  int
	openBrowser bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
	runBars          map[string]*ProgressBar

	runsLock sync.Mutex
	runs     []*RunInfo
	runIndex map[string]*RunInfo
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		runBars:  make(map[string]*ProgressBar),
		runIndex: make(map[string]*RunInfo),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes the monitor open its page in a web browser once the
// server is up.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RunStarted registers a simulation and starts tracking its progress.
func (m *Monitor) RunStarted(s *sim.Simulation) {
	info := &RunInfo{
		ID:        s.ID(),
		Name:      s.Name(),
		Policy:    s.Policy().String(),
		NumPages:  s.NumPages(),
		Retention: s.Retention().String(),
	}

	m.runsLock.Lock()
	m.runs = append(m.runs, info)
	m.runIndex[info.ID] = info
	m.runsLock.Unlock()

	bar := m.CreateProgressBar(s.Name(), 0)

	m.progressBarsLock.Lock()
	m.runBars[s.ID()] = bar
	m.progressBarsLock.Unlock()

	s.AcceptHook(&progressHook{monitor: m, bar: bar, runID: s.ID()})
}

// RunFinished stores the final state of a simulation and removes its
// progress bar.
func (m *Monitor) RunFinished(s *sim.Simulation, state sim.State, err error) {
	m.updateRun(s.ID(), state, func(info *RunInfo) {
		info.Done = s.Done()
		if err != nil {
			info.Error = err.Error()
		}
	})

	m.progressBarsLock.Lock()
	bar, found := m.runBars[s.ID()]
	delete(m.runBars, s.ID())
	m.progressBarsLock.Unlock()

	if found {
		m.CompleteProgressBar(bar)
	}
}

func (m *Monitor) updateRun(id string, state sim.State, f func(*RunInfo)) {
	m.runsLock.Lock()
	defer m.runsLock.Unlock()

	info, found := m.runIndex[id]
	if !found {
		return
	}

	info.TotalEvents = state.TotalEvents
	info.ReadCount = state.ReadCount
	info.WriteCount = state.WriteCount

	if f != nil {
		f(info)
	}
}

// Runs returns a copy of the information of all the registered runs.
func (m *Monitor) Runs() []RunInfo {
	m.runsLock.Lock()
	defer m.runsLock.Unlock()

	runs := make([]RunInfo, 0, len(m.runs))
	for _, r := range m.runs {
		runs = append(runs, *r)
	}

	return runs
}

func (m *Monitor) findRun(id string) (RunInfo, bool) {
	m.runsLock.Lock()
	defer m.runsLock.Unlock()

	info, found := m.runIndex[id]
	if !found {
		return RunInfo{}, false
	}

	return *info, true
}

// CreateProgressBar creates a new progress bar. A zero total means the
// number of items is unknown.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// ProgressBars returns snapshots of the bars that are being shown.
func (m *Monitor) ProgressBars() []ProgressBarSnapshot {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	snapshots := make([]ProgressBarSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		snapshots = append(snapshots, b.Snapshot())
	}

	return snapshots
}

func (m *Monitor) createRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/runs", m.listRuns)
	r.HandleFunc("/api/run/{id}", m.runDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	router := m.createRouter()
	go func() {
		err := http.Serve(listener, router)
		dieOnErr(err)
	}()

	if m.openBrowser {
		err = browser.OpenURL(url)
		if err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return url
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.ProgressBars())
}

func (m *Monitor) listRuns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.Runs())
}

func (m *Monitor) runDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	info, found := m.findRunOr404(w, id)
	if !found {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&info)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)
	dieOnErr(err)
}

type fieldReq struct {
	RunID     string `json:"run_id,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	info, found := m.findRunOr404(w, req.RunID)
	if !found {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&info)
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

func (m *Monitor) findRunOr404(
	w http.ResponseWriter,
	id string,
) (RunInfo, bool) {
	info, found := m.findRun(id)
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Run not found"))
		dieOnErr(err)
	}

	return info, found
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
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

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	time.Sleep(time.Second)

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

type progressHook struct {
	monitor *Monitor
	bar     *ProgressBar
	runID   string
}

// Func advances the progress bar after every event.
func (h *progressHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent {
		return
	}

	state := ctx.Detail.(sim.State)

	h.bar.IncrementFinished(1)
	h.monitor.updateRun(h.runID, state, nil)
}
