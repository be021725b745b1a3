// Package extract turns raw page fragments into structured records and
// drives the scroll/load-more pagination loop that harvests them.
package extract

// Record is one structured unit of extracted output.
type Record interface {
	// Key identifies the record for deduplication; an empty key is never
	// deduplicated.
	Key() string
	// Row renders the record as one CSV data row, field order matching the
	// type's Header.
	Row() []string
}

// CommentRecord is a post comment that contained a contact email.
type CommentRecord struct {
	Name       string
	Headline   string
	ProfileURL string
	Email      string
}

// CommentHeader is the CSV header for comment extractions.
var CommentHeader = []string{"name", "headline", "profile_url", "email"}

func (r CommentRecord) Key() string { return r.ProfileURL }

func (r CommentRecord) Row() []string {
	return []string{r.Name, r.Headline, r.ProfileURL, r.Email}
}

// EmployeeRecord is one person pulled from a company people page.
type EmployeeRecord struct {
	Name       string
	Headline   string
	ProfileURL string
}

// EmployeeHeader is the CSV header for employee extractions.
var EmployeeHeader = []string{"name", "headline", "profile_url"}

func (r EmployeeRecord) Key() string { return r.ProfileURL }

func (r EmployeeRecord) Row() []string {
	return []string{r.Name, r.Headline, r.ProfileURL}
}

// ProfileRecord is the structured form of a full profile page, produced by
// the AI-extraction collaborator. Experience and education arrive flattened
// to "; "-joined summaries for CSV output.
type ProfileRecord struct {
	Name           string
	Headline       string
	Location       string
	About          string
	Experience     string
	Education      string
	Skills         string
	Certifications string
	Languages      string
}

// ProfileHeader is the CSV header for profile extractions.
var ProfileHeader = []string{
	"Name", "Headline", "Location", "About",
	"Experience", "Education", "Skills", "Certifications", "Languages",
}

func (r ProfileRecord) Key() string { return "" }

func (r ProfileRecord) Row() []string {
	return []string{
		r.Name, r.Headline, r.Location, r.About,
		r.Experience, r.Education, r.Skills, r.Certifications, r.Languages,
	}
}

// DedupIndex tracks already-emitted record keys for one extraction run.
type DedupIndex struct {
	seen map[string]struct{}
}

// NewDedupIndex creates an empty index.
func NewDedupIndex() *DedupIndex {
	return &DedupIndex{seen: make(map[string]struct{})}
}

// Seen reports whether the key was already recorded, recording it if not.
// Empty keys are never deduplicated.
func (d *DedupIndex) Seen(key string) bool {
	if key == "" {
		return false
	}
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}
