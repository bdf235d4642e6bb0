package orrery

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// CgCatalog definition.
type CgCatalog struct {
	Version string     `json:"version"`
	Name    string     `json:"name"`
	Items   []*CgItems `json:"items"`
	Require []string   `json:"require,omitempty"`
}

func (c *CgCatalog) String() string {
	return c.Name + "(" + c.Version + ")"
}

// CgItems definition.
type CgItems struct {
	Class           string            `json:"class"`
	Name            string            `json:"name"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	Center          string            `json:"center"`
	TrajectoryFrame string            `json:"trajectoryFrame"`
	Trajectory      *CgTrajectory     `json:"trajectory,omitempty"`
	Bodyframe       *CgBodyFrame      `json:"bodyFrame,omitempty"`
	Geometry        *CgGeometry       `json:"geometry,omitempty"`
	Label           *CgLabel          `json:"label,omitempty"`
	TrajectoryPlot  *CgTrajectoryPlot `json:"trajectoryPlot,omitempty"`
}

// CgTrajectory definition.
type CgTrajectory struct {
	Type   string `json:"type,omitempty"`
	Source string `json:"source,omitempty"`
}

// Validate validates a CgTrajectory.
func (t *CgTrajectory) Validate() error {
	if t.Type != "InterpolatedStates" || !strings.HasSuffix(t.Source, "xyzv") {
		return errors.New("only InterpolatedStates are currently supported in Cosmographia trajectory types")
	}
	return nil
}

func (t *CgTrajectory) String() string {
	return t.Source + " as " + t.Type
}

// CgBodyFrame definition.
type CgBodyFrame struct {
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
}

func (c *CgBodyFrame) String() string {
	return c.Name + " (type: " + c.Type + ")"
}

// CgGeometry definition.
type CgGeometry struct {
	Type   string    `json:"type,omitempty"`
	Mesh   []float64 `json:"meshRotation,omitempty"`
	Size   float64   `json:"size,omitempty"`
	Source string    `json:"source,omitempty"`
}

// CgLabel definition.
type CgLabel struct {
	Color    []float64 `json:"color,omitempty"`
	FadeSize int       `json:"fadeSize,omitempty"`
	ShowText bool      `json:"showText,omitempty"`
}

func (l *CgLabel) String() string {
	return fmt.Sprintf("color %v, fade %d, show %v", l.Color, l.FadeSize, l.ShowText)
}

// CgTrajectoryPlot definition.
type CgTrajectoryPlot struct {
	Color       []float64 `json:"color,omitempty"`
	LineWidth   int       `json:"lineWidth,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Lead        string    `json:"lead,omitempty"`
	Fade        int       `json:"fade,omitempty"`
	SampleCount int       `json:"sampleCount,omitempty"`
}

// CgInterpolatedState definition.
type CgInterpolatedState struct {
	JD       float64
	Position []float64
	Velocity []float64
}

// FromText initializes from text.
// The `record` parameter must be an array of seven items.
func (i *CgInterpolatedState) FromText(record []string) {
	if val, err := strconv.ParseFloat(record[0], 64); err != nil {
		panic(err)
	} else {
		i.JD = val
	}

	if posX, err := strconv.ParseFloat(record[1], 64); err != nil {
		panic(err)
	} else if posY, err := strconv.ParseFloat(record[2], 64); err != nil {
		panic(err)
	} else if posZ, err := strconv.ParseFloat(record[3], 64); err != nil {
		panic(err)
	} else {
		i.Position = []float64{posX, posY, posZ}
	}

	if velX, err := strconv.ParseFloat(record[4], 64); err != nil {
		panic(err)
	} else if velY, err := strconv.ParseFloat(record[5], 64); err != nil {
		panic(err)
	} else if velZ, err := strconv.ParseFloat(record[6], 64); err != nil {
		panic(err)
	} else {
		i.Velocity = []float64{velX, velY, velZ}
	}
}

// ToText converts to text for written output.
func (i *CgInterpolatedState) ToText() string {
	return fmt.Sprintf("%f %f %f %f %f %f %f", i.JD, i.Position[0], i.Position[1], i.Position[2], i.Velocity[0], i.Velocity[1], i.Velocity[2])
}

// ParseInterpolatedStates takes a string and converts that into a CgInterpolatedState.
func ParseInterpolatedStates(s string) []*CgInterpolatedState {
	var states = []*CgInterpolatedState{}
	r := csv.NewReader(strings.NewReader(s))
	r.Comma = ' '
	r.Comment = '#'
	for {
		record, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			panic(err)
		}
		state := CgInterpolatedState{}
		state.FromText(record)
		states = append(states, &state)
	}

	return states
}

// createInterpolatedFile returns a file which requires a defer close statement!
func createInterpolatedFile(filename string, stamped bool, stateDT time.Time) *os.File {
	config := orreryConfig()
	if stamped {
		t := time.Now()
		filename = fmt.Sprintf("%s/flight-%s-%d-%02d-%02dT%02d.%02d.%02d.xyzv", config.outputDir, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/flight-%s.xyzv", config.outputDir, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a TDB Julian date
#   Position in km
#   Velocity in km/sec
#   Simulation time start (UTC): %s`, time.Now(), stateDT.UTC()))
	return f
}

// createFlightCSVFile returns a file which requires a defer close statement!
func createFlightCSVFile(filename string, conf ExportConfig, stateDT time.Time) *os.File {
	config := orreryConfig()
	if conf.Timestamp {
		t := time.Now()
		filename = fmt.Sprintf("%s/flight-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", config.outputDir, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/flight-%s.csv", config.outputDir, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are x, y, z in km and vx, vy, vz in km/s.
#   Simulation time start (UTC): %s
time,x,y,z,vx,vy,vz,fuel,timeInHours,timeInDays`, time.Now(), stateDT.UTC()))
	if conf.CSVAppendHdr != nil {
		// Append the headers for the appended columns.
		f.WriteString("," + conf.CSVAppendHdr())
	}
	return f
}

// StreamStates streams the flight records of the channel to the configured
// files. One trajectory per flight: a record stream never switches frames.
func StreamStates(conf ExportConfig, stateChan <-chan (FlightRecord)) {
	// Read from channel
	var prevStatePtr, firstStatePtr *FlightRecord
	var f, fAsCSV *os.File
	cgItems := []*CgItems{}
	var curCgItem *CgItems
	defer func() {
		if conf.Cosmo && prevStatePtr != nil {
			// Let's write the catalog.
			c := CgCatalog{Version: "1.0", Name: prevStatePtr.Craft, Items: cgItems, Require: nil}
			// Create JSON file.
			fc, err := os.Create(fmt.Sprintf("%s/catalog-%s.json", orreryConfig().outputDir, conf.Filename))
			if err != nil {
				panic(err)
			}
			defer fc.Close()
			fmt.Printf("Saving file to %s.\n", fc.Name())
			if marsh, err := json.Marshal(c); err != nil {
				panic(err)
			} else {
				fc.Write(marsh)
			}
		}
	}()

	color := []float64{0.6, 1, 1}
	for {
		state, more := <-stateChan
		if more {
			if prevStatePtr == nil {
				firstStatePtr = &state
				if conf.Cosmo {
					f = createInterpolatedFile(conf.Filename, conf.Timestamp, state.DT)
					traj := CgTrajectory{Type: "InterpolatedStates", Source: fmt.Sprintf("flight-%s.xyzv", conf.Filename)}
					label := CgLabel{Color: color, FadeSize: 1000000, ShowText: true}
					plot := CgTrajectoryPlot{Color: color, LineWidth: 1, Duration: "", Lead: "0 d", Fade: 0, SampleCount: 10}
					curCgItem = &CgItems{Class: "spacecraft", Name: state.Craft, StartTime: fmt.Sprintf("%s", state.DT.UTC()), EndTime: "", Center: Sun.Name, TrajectoryFrame: "EclipticJ2000", Trajectory: &traj, Bodyframe: nil, Geometry: nil, Label: &label, TrajectoryPlot: &plot}
				}
				if conf.AsCSV {
					fAsCSV = createFlightCSVFile(conf.Filename, conf, state.DT)
				}
			} else if state.DT.Sub(prevStatePtr.DT) < StepSize {
				// Only write one datapoint per integration step.
				continue
			}
			prevStatePtr = &state
			if conf.Cosmo {
				asTxt := CgInterpolatedState{JD: julian.TimeToJD(state.DT), Position: state.R, Velocity: state.V}
				if _, err := f.WriteString("\n" + asTxt.ToText()); err != nil {
					panic(err)
				}
			}
			if conf.AsCSV {
				deltaT := state.DT.Sub(firstStatePtr.DT)
				asTxt := fmt.Sprintf("%s,%f,%f,%f,%f,%f,%f,%.3f,%.3f,%.3f", state.DT.UTC().Format("2006-01-02 15:04:05"),
					state.R[0], state.R[1], state.R[2], state.V[0], state.V[1], state.V[2],
					state.FuelMass, deltaT.Hours(), deltaT.Hours()/24)
				if conf.CSVAppend != nil {
					asTxt += "," + conf.CSVAppend(state)
				}
				if _, err := fAsCSV.WriteString("\n" + asTxt); err != nil {
					panic(err)
				}
			}
		} else {
			// The channel is closed, hence the flight is over.
			if prevStatePtr == nil {
				// Nothing was ever streamed.
				break
			}
			if conf.Cosmo {
				f.WriteString(fmt.Sprintf("\n# Simulation time end (UTC): %s\n", prevStatePtr.DT.UTC()))
				f.Close()
			}
			if conf.AsCSV {
				fAsCSV.WriteString(fmt.Sprintf("\n# Simulation time end (UTC): %s\n", prevStatePtr.DT.UTC()))
				fAsCSV.Close()
			}
			if conf.Cosmo {
				longerEnd := prevStatePtr.DT.Add(time.Duration(24) * time.Hour)
				curCgItem.EndTime = fmt.Sprintf("%s", longerEnd.UTC())
				curCgItem.TrajectoryPlot.Duration = fmt.Sprintf("%d d", int(longerEnd.Sub(firstStatePtr.DT).Hours()/24+1))
				cgItems = append(cgItems, curCgItem)
			}
			break
		}
	}
}

// PlanExport is the JSON shape of an exported trajectory plan.
type PlanExport struct {
	Name          string      `json:"name"`
	Success       bool        `json:"success"`
	Steps         int         `json:"steps"`
	EstimatedTime string      `json:"estimatedTime"`
	FuelRequired  float64     `json:"fuelRequired"`
	Path          [][]float64 `json:"path"`
}

// ExportPlan writes a trajectory plan as JSON to the output directory and
// returns the full path of the written file.
func ExportPlan(plan Plan, name string) (string, error) {
	filename := fmt.Sprintf("%s/plan-%s.json", orreryConfig().outputDir, name)
	out := PlanExport{Name: name, Success: plan.Success, Steps: plan.Steps,
		EstimatedTime: plan.EstimatedTime.String(), FuelRequired: plan.Fuel, Path: plan.Path}
	marsh, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filename, marsh, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// ExportMeasurements writes station observations as CSV rows to the output
// directory and returns the full path of the written file.
func ExportMeasurements(measurements []Measurement, name string) (string, error) {
	filename := fmt.Sprintf("%s/obs-%s.csv", orreryConfig().outputDir, name)
	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString("epoch,station,target,visible,trueRange,trueRangeRate,range,rangeRate,el,az\n"); err != nil {
		return "", err
	}
	for _, m := range measurements {
		row := fmt.Sprintf("%s,%s,%s,%v,%s%f,%f\n", m.Epoch.Format(time.RFC3339), m.Station.Name,
			m.Target, m.Visible, m.CSV(), m.Elevation, m.Azimuth)
		if _, err := f.WriteString(row); err != nil {
			return "", err
		}
	}
	return filename, nil
}

// ExportConfig configures the exporting of a flight.
type ExportConfig struct {
	Filename     string
	Cosmo        bool
	AsCSV        bool
	Timestamp    bool
	CSVAppend    func(st FlightRecord) string // Custom export (do not include leading comma)
	CSVAppendHdr func() string                // Header for the custom export
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.Cosmo && !c.AsCSV
}
