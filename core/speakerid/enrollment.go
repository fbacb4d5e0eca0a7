package speakerid

// EnrollmentSession accumulates embedding samples until enough are collected
// to produce a reference embedding.
type EnrollmentSession struct {
	target  int
	samples []Embedding
}

func NewEnrollmentSession(target int) *EnrollmentSession {
	if target < 1 {
		target = 1
	}
	return &EnrollmentSession{target: target}
}

// Add records a sample and reports whether the session is complete.
func (s *EnrollmentSession) Add(sample Embedding) bool {
	if len(s.samples) < s.target {
		s.samples = append(s.samples, sample)
	}
	return len(s.samples) >= s.target
}

func (s *EnrollmentSession) Count() int {
	return len(s.samples)
}

// Result averages the collected samples into the reference embedding.
func (s *EnrollmentSession) Result() (Embedding, error) {
	return Average(s.samples)
}
