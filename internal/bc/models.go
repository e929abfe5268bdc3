package bc

// Canonical shapes for everything the rest of the application sees. BC
// responses are inconsistent about field names (id vs systemId, no vs
// number); the raw types below absorb that and normalize immediately on
// receipt, so nothing outside this package handles the upstream shape.

// JournalLine is one job journal line as known to BC.
type JournalLine struct {
	ID                  string
	LineNo              int
	JournalTemplateName string
	JournalBatchName    string
	JobNo               string
	JobTaskNo           string
	ResourceNo          string
	PostingDate         string // YYYY-MM-DD
	Quantity            float64
	Description         string
	ApprovalStatus      string
	Comments            string
}

// JournalLineSpec is the input for creating or updating a journal line.
type JournalLineSpec struct {
	ID                  string // set for updates only
	JournalTemplateName string
	JournalBatchName    string
	JobNo               string
	JobTaskNo           string
	ResourceNo          string
	PostingDate         string
	Quantity            float64
	Description         string
	WorkTypeCode        string
	LineNo              int // known composite key part, 0 when unknown
}

// LineStatus mirrors the approval fields of one journal line.
type LineStatus struct {
	ApprovalStatus string
	Comments       string
}

// Job is one BC project a resource may log time against.
type Job struct {
	No          string `json:"no"`
	Description string `json:"description"`
}

// JobTask is one task under a job.
type JobTask struct {
	JobNo       string `json:"job_no"`
	TaskNo      string `json:"task_no"`
	Description string `json:"description"`
}

// ResourceAssignments is the set of jobs and exact (job, task) pairs a
// resource is authorized to log time against.
type ResourceAssignments struct {
	ResourceNo string    `json:"resource_no"`
	Jobs       []Job     `json:"jobs"`
	Tasks      []JobTask `json:"tasks"`
}

// rawJournalLine tolerates both id/systemId and no/number spellings.
type rawJournalLine struct {
	ID                  string  `json:"id"`
	SystemID            string  `json:"systemId"`
	LineNo              int     `json:"lineNo"`
	JournalTemplateName string  `json:"journalTemplateName"`
	JournalBatchName    string  `json:"journalBatchName"`
	JobNo               string  `json:"jobNo"`
	JobTaskNo           string  `json:"jobTaskNo"`
	No                  string  `json:"no"`
	Number              string  `json:"number"`
	PostingDate         string  `json:"postingDate"`
	Quantity            float64 `json:"quantity"`
	Description         string  `json:"description"`
	ApprovalStatus      string  `json:"approvalStatus"`
	Comments            string  `json:"comments"`
}

func (r *rawJournalLine) normalize() JournalLine {
	id := r.ID
	if id == "" {
		id = r.SystemID
	}
	resourceNo := r.No
	if resourceNo == "" {
		resourceNo = r.Number
	}
	return JournalLine{
		ID:                  id,
		LineNo:              r.LineNo,
		JournalTemplateName: r.JournalTemplateName,
		JournalBatchName:    r.JournalBatchName,
		JobNo:               r.JobNo,
		JobTaskNo:           r.JobTaskNo,
		ResourceNo:          resourceNo,
		PostingDate:         r.PostingDate,
		Quantity:            r.Quantity,
		Description:         r.Description,
		ApprovalStatus:      r.ApprovalStatus,
		Comments:            r.Comments,
	}
}

type rawJob struct {
	No          string `json:"no"`
	Number      string `json:"number"`
	Description string `json:"description"`
	DisplayName string `json:"displayName"`
}

func (r *rawJob) normalize() Job {
	no := r.No
	if no == "" {
		no = r.Number
	}
	desc := r.Description
	if desc == "" {
		desc = r.DisplayName
	}
	return Job{No: no, Description: desc}
}

type rawJobTask struct {
	JobNo       string `json:"jobNo"`
	JobTaskNo   string `json:"jobTaskNo"`
	TaskNo      string `json:"taskNo"`
	Description string `json:"description"`
}

func (r *rawJobTask) normalize() JobTask {
	taskNo := r.JobTaskNo
	if taskNo == "" {
		taskNo = r.TaskNo
	}
	return JobTask{JobNo: r.JobNo, TaskNo: taskNo, Description: r.Description}
}

type rawPlanningLine struct {
	JobNo     string `json:"jobNo"`
	JobTaskNo string `json:"jobTaskNo"`
	No        string `json:"no"`
	Number    string `json:"number"`
}

func (r *rawPlanningLine) resourceNo() string {
	if r.No != "" {
		return r.No
	}
	return r.Number
}

// odataList is the collection envelope all BC list endpoints share.
type odataList[T any] struct {
	Value []T `json:"value"`
}
