// Package progressive implements ITU-T T.81 Annex G progressive JPEG
// decode and encode: spectral selection and successive approximation
// across multiple scans, coordinated by an explicit state machine (spec
// §4.8 Progressive Coordinator).
package progressive

import "fmt"

// State is one stage of the progressive coordinator's lifecycle.
type State int

const (
	StateInitial State = iota
	StateDCProcessing
	StateACProcessing
	StateRefinement
	StateCompleted
	StateError
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateDCProcessing:
		return "dc_processing"
	case StateACProcessing:
		return "ac_processing"
	case StateRefinement:
		return "refinement"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ScanClass is the (Ss,Se,Ah,Al) classification of one scan header, per
// ITU-T T.81 table B.3 and section G.1.2.
type ScanClass int

const (
	ScanDCFirst ScanClass = iota
	ScanDCRefine
	ScanACFirst
	ScanACRefine
)

// ClassifyScan maps a scan's spectral selection and successive
// approximation parameters to a ScanClass, validating the combination
// along the way. Se==0 with Ss==0 marks a DC scan; Ss>0 marks an AC
// scan, which the caller must additionally confirm is single-component.
// Ah==0 marks a first (non-refining) scan; Ah==Al+1 marks a refinement.
func ClassifyScan(ss, se, ah, al int) (ScanClass, error) {
	if ss < 0 || se > 63 || ss > se {
		return 0, fmt.Errorf("progressive: bad spectral selection Ss=%d Se=%d", ss, se)
	}
	if ah != 0 && ah != al+1 {
		return 0, fmt.Errorf("progressive: bad successive approximation Ah=%d Al=%d", ah, al)
	}
	switch {
	case ss == 0:
		if se != 0 {
			return 0, fmt.Errorf("progressive: DC scan must have Se=0, got %d", se)
		}
		if ah == 0 {
			return ScanDCFirst, nil
		}
		return ScanDCRefine, nil
	default:
		if ah == 0 {
			return ScanACFirst, nil
		}
		return ScanACRefine, nil
	}
}

type scanKey struct {
	component int
	ss, se    int
	ah, al    int
}

// Coordinator tracks scan sequencing for one progressive decode: it
// classifies each incoming scan header, rejects a (component, Ss, Se,
// Ah, Al) tuple seen twice, and exposes an informational completion
// estimate. It never blocks decoding on its own account; a malformed
// sequence is reported to the caller as an error, not silently
// corrected.
type Coordinator struct {
	state             State
	seen              map[scanKey]bool
	dcScans, acScans  int
	refinementsStarted bool
}

// NewCoordinator returns a Coordinator in StateInitial.
func NewCoordinator() *Coordinator {
	return &Coordinator{state: StateInitial, seen: make(map[scanKey]bool)}
}

// State returns the coordinator's current state.
func (c *Coordinator) State() State { return c.state }

// Accept records one scan header covering componentIndices, transitioning
// state and rejecting a duplicate (component, Ss, Se, Ah, Al) tuple. On
// error the coordinator moves to StateError and every subsequent Accept
// call fails until the caller abandons the decode.
func (c *Coordinator) Accept(componentIndices []int, ss, se, ah, al int) error {
	if c.state == StateError {
		return fmt.Errorf("progressive: coordinator already in error state")
	}
	class, err := ClassifyScan(ss, se, ah, al)
	if err != nil {
		c.state = StateError
		return err
	}
	if class == ScanACFirst || class == ScanACRefine {
		if len(componentIndices) != 1 {
			c.state = StateError
			return fmt.Errorf("progressive: AC scan must reference exactly one component, got %d", len(componentIndices))
		}
	}
	for _, comp := range componentIndices {
		key := scanKey{comp, ss, se, ah, al}
		if c.seen[key] {
			c.state = StateError
			return fmt.Errorf("progressive: duplicate scan for component %d (Ss=%d Se=%d Ah=%d Al=%d)", comp, ss, se, ah, al)
		}
		c.seen[key] = true
	}

	switch class {
	case ScanDCFirst:
		c.dcScans++
		c.state = StateDCProcessing
	case ScanDCRefine:
		c.dcScans++
		c.state = StateDCProcessing
	case ScanACFirst:
		c.acScans++
		c.state = StateACProcessing
	case ScanACRefine:
		c.acScans++
		c.refinementsStarted = true
		c.state = StateRefinement
	}
	return nil
}

// Complete marks the decode finished after the final EOI.
func (c *Coordinator) Complete() {
	if c.state != StateError {
		c.state = StateCompleted
	}
}

// Progress returns an informational-only completion estimate in
// [0,100], weighting DC scan progress at 40% and AC scan progress at
// 60% of the total (spec §9 Open Question, resolved as informational:
// this value drives no control flow anywhere in the decoder).
func (c *Coordinator) Progress() int {
	switch c.state {
	case StateInitial:
		return 0
	case StateDCProcessing:
		if c.dcScans == 0 {
			return 0
		}
		return 40
	case StateACProcessing, StateRefinement:
		acProgress := c.acScans * 15
		if acProgress > 60 {
			acProgress = 60
		}
		return 40 + acProgress
	case StateCompleted:
		return 100
	default:
		return 0
	}
}

// IntermediateImageAvailable reports whether at least one DC scan has
// been accepted, the point from which an approximate (blurry/blocky)
// preview could be reconstructed from the coefficients accumulated so
// far. It does not check which components that DC scan covered, so it
// can return true before every component has its DC coefficient.
func (c *Coordinator) IntermediateImageAvailable() bool {
	return c.dcScans > 0
}
