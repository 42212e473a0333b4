package cache

// Stats is a snapshot of a SingleLevelCache's counters, including the
// derived totals and percentages that ComputeStats fills in.
type Stats struct {
	ReadHits    uint64
	ReadMisses  uint64
	WriteHits   uint64
	WriteMisses uint64
	Evictions   uint64

	computed bool

	NumReads  uint64
	NumWrites uint64
	NumHits   uint64
	NumMisses uint64

	ReadHitPct   float64
	ReadMissPct  float64
	WriteHitPct  float64
	WriteMissPct float64
	EvictionPct  float64
}

func (s *Stats) compute() {
	s.NumReads = s.ReadHits + s.ReadMisses
	s.NumWrites = s.WriteHits + s.WriteMisses
	s.NumHits = s.ReadHits + s.WriteHits
	s.NumMisses = s.ReadMisses + s.WriteMisses

	if s.NumReads != 0 {
		s.ReadHitPct = float64(s.ReadHits) / float64(s.NumReads)
		s.ReadMissPct = float64(s.ReadMisses) / float64(s.NumReads)
	}

	if s.NumWrites != 0 {
		s.WriteHitPct = float64(s.WriteHits) / float64(s.NumWrites)
		s.WriteMissPct = float64(s.WriteMisses) / float64(s.NumWrites)
	}

	if s.NumMisses != 0 {
		s.EvictionPct = float64(s.Evictions) / float64(s.NumMisses)
	}

	s.computed = true
}

func (s *Stats) zero() {
	*s = Stats{}
}

// TwoLevelStats is a snapshot of a TwoLevelCache's counters.
type TwoLevelStats struct {
	L1ReadHits  uint64
	L2ReadHits  uint64
	L2ReadMiss  uint64
	L1WriteHits uint64
	L2WriteHits uint64
	L2WriteMiss uint64

	computed bool

	NumReads  uint64
	NumWrites uint64

	L1ReadHitPct   float64
	L2ReadHitPct   float64
	L2ReadMissPct  float64
	L1WriteHitPct  float64
	L2WriteHitPct  float64
	L2WriteMissPct float64
}

func (s *TwoLevelStats) compute() {
	s.NumReads = s.L1ReadHits + s.L2ReadHits + s.L2ReadMiss
	s.NumWrites = s.L1WriteHits + s.L2WriteHits + s.L2WriteMiss

	if s.NumReads != 0 {
		s.L1ReadHitPct = float64(s.L1ReadHits) / float64(s.NumReads)
		s.L2ReadHitPct = float64(s.L2ReadHits) / float64(s.NumReads)
		s.L2ReadMissPct = float64(s.L2ReadMiss) / float64(s.NumReads)
	}

	if s.NumWrites != 0 {
		s.L1WriteHitPct = float64(s.L1WriteHits) / float64(s.NumWrites)
		s.L2WriteHitPct = float64(s.L2WriteHits) / float64(s.NumWrites)
		s.L2WriteMissPct = float64(s.L2WriteMiss) / float64(s.NumWrites)
	}

	s.computed = true
}

func (s *TwoLevelStats) zero() {
	*s = TwoLevelStats{}
}
