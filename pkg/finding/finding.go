package finding

// DefaultConfidence is assumed when the scanning service omits the
// confidence field.
const DefaultConfidence = 100

// Unknown is the label applied wherever a grouping key (type, module,
// scan name, scan target) is absent.
const Unknown = "Unknown"

// Finding is one raw fact from the scanning service. The timestamp is kept
// as the opaque string the service sent (epoch seconds or ISO text); the
// pipeline never interprets it beyond ordering.
type Finding struct {
	Type       string `json:"type"`
	Data       string `json:"data"`
	Module     string `json:"module"`
	Source     string `json:"source"`
	Confidence int    `json:"confidence"`
	Timestamp  string `json:"timestamp"`
}

// ScanInfo is the per-scan metadata supplied with each report request.
// Created holds the service's creation timestamp or is empty.
type ScanInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Target  string `json:"target"`
	Created string `json:"created"`
}

// TargetLabel returns the scan target, or Unknown when unset.
func (s ScanInfo) TargetLabel() string {
	if s.Target == "" {
		return Unknown
	}
	return s.Target
}

// NameLabel returns the scan name, or Unknown when unset.
func (s ScanInfo) NameLabel() string {
	if s.Name == "" {
		return Unknown
	}
	return s.Name
}

// Record is the simplified projection of a Finding stored in the
// categorized index. The type label lives in the index key.
type Record struct {
	Data       string `json:"data"`
	Module     string `json:"module"`
	Source     string `json:"source"`
	Confidence int    `json:"confidence"`
	Timestamp  string `json:"timestamp"`
}

// TypeLabel returns the finding's grouping key: the type verbatim,
// case-sensitive, or Unknown when empty.
func (f Finding) TypeLabel() string {
	if f.Type == "" {
		return Unknown
	}
	return f.Type
}

// ModuleLabel returns the producing module, or Unknown when unset.
func (f Finding) ModuleLabel() string {
	if f.Module == "" {
		return Unknown
	}
	return f.Module
}

// Record projects the finding into its index form.
func (f Finding) Record() Record {
	return Record{
		Data:       f.Data,
		Module:     f.Module,
		Source:     f.Source,
		Confidence: f.Confidence,
		Timestamp:  f.Timestamp,
	}
}

// FromMap builds a Finding from a decoded JSON object, applying the
// service defaults: empty strings for data/module/source/timestamp and
// DefaultConfidence when the field is absent. Unrecognized keys are
// ignored here; callers that need them (the CSV exporter) keep the map.
func FromMap(m map[string]any) Finding {
	f := Finding{
		Type:       stringField(m, "type"),
		Data:       stringField(m, "data"),
		Module:     stringField(m, "module"),
		Source:     stringField(m, "source"),
		Timestamp:  stringField(m, "timestamp"),
		Confidence: DefaultConfidence,
	}
	if v, ok := m["confidence"]; ok {
		switch n := v.(type) {
		case float64:
			f.Confidence = int(n)
		case int:
			f.Confidence = n
		}
	}
	return f
}

// FromMaps converts a batch of decoded objects.
func FromMaps(ms []map[string]any) []Finding {
	out := make([]Finding, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromMap(m))
	}
	return out
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
