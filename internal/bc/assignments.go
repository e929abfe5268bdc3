package bc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
)

// GetResourceAssignments derives the jobs and tasks a resource may log time
// against from the job planning lines that name it. A task under a job the
// resource shares but is not assigned to at the task level is excluded.
func (c *Client) GetResourceAssignments(ctx context.Context, resourceNo string) (*ResourceAssignments, error) {
	filter := fmt.Sprintf("no eq '%s'", resourceNo)
	target := c.companyURL("/jobPlanningLines") + "?$filter=" + url.QueryEscape(filter)

	var planning odataList[rawPlanningLine]
	if err := c.doJSON(ctx, http.MethodGet, target, nil, &planning); err != nil {
		return nil, err
	}

	jobNos := make(map[string]bool)
	assignedPairs := make(map[string]bool) // "jobNo|taskNo"
	for i := range planning.Value {
		pl := &planning.Value[i]
		if pl.resourceNo() != resourceNo || pl.JobNo == "" {
			continue
		}
		jobNos[pl.JobNo] = true
		if pl.JobTaskNo != "" {
			assignedPairs[pl.JobNo+"|"+pl.JobTaskNo] = true
		}
	}

	result := &ResourceAssignments{ResourceNo: resourceNo, Jobs: []Job{}, Tasks: []JobTask{}}
	if len(jobNos) == 0 {
		return result, nil
	}

	sortedJobNos := make([]string, 0, len(jobNos))
	for no := range jobNos {
		sortedJobNos = append(sortedJobNos, no)
	}
	sort.Strings(sortedJobNos)

	for _, jobNo := range sortedJobNos {
		job, err := c.getJob(ctx, jobNo)
		if err != nil {
			return nil, err
		}
		result.Jobs = append(result.Jobs, *job)

		tasks, err := c.getJobTasks(ctx, jobNo)
		if err != nil {
			return nil, err
		}
		for _, task := range tasks {
			// Only the exact pairs the planning lines referenced
			if assignedPairs[task.JobNo+"|"+task.TaskNo] {
				result.Tasks = append(result.Tasks, task)
			}
		}
	}

	return result, nil
}

func (c *Client) getJob(ctx context.Context, jobNo string) (*Job, error) {
	filter := fmt.Sprintf("no eq '%s'", jobNo)
	target := c.companyURL("/jobs") + "?$filter=" + url.QueryEscape(filter)

	var list odataList[rawJob]
	if err := c.doJSON(ctx, http.MethodGet, target, nil, &list); err != nil {
		return nil, err
	}
	if len(list.Value) == 0 {
		// Planning line referenced a job the API does not expose; keep the
		// number so the caller can still log against it
		return &Job{No: jobNo}, nil
	}
	job := list.Value[0].normalize()
	return &job, nil
}

func (c *Client) getJobTasks(ctx context.Context, jobNo string) ([]JobTask, error) {
	filter := fmt.Sprintf("jobNo eq '%s'", jobNo)
	target := c.companyURL("/jobTasks") + "?$filter=" + url.QueryEscape(filter)

	var list odataList[rawJobTask]
	if err := c.doJSON(ctx, http.MethodGet, target, nil, &list); err != nil {
		return nil, err
	}

	tasks := make([]JobTask, 0, len(list.Value))
	for i := range list.Value {
		task := list.Value[i].normalize()
		if task.JobNo == "" {
			task.JobNo = jobNo
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
