package client

import (
	"context"
	"io"
	"strconv"
)

// Login exchanges credentials for an access token. It does not store the
// token; callers hand Response.AccessToken to their token store.
func (c *Client) Login(ctx context.Context, email, password string) *Response {
	return c.Post(ctx, "login", Form{Fields: map[string]string{
		"email":    email,
		"password": password,
	}}, nil)
}

// AllowedEmailDomains lists the email domains accepted at signup.
func (c *Client) AllowedEmailDomains(ctx context.Context) *Response {
	return c.Get(ctx, "signup/allowedEmailDomains", nil, nil)
}

// UserInfo returns the logged-in user's email, admin and activation flags.
func (c *Client) UserInfo(ctx context.Context) *Response {
	return c.GetLoggedIn(ctx, "user/info", nil)
}

// ListJobs returns the user's transcription jobs.
func (c *Client) ListJobs(ctx context.Context) *Response {
	return c.GetLoggedIn(ctx, "transcriptions/jobs", nil)
}

// Transcript fetches the transcript of a finished job.
func (c *Client) Transcript(ctx context.Context, jobID int) *Response {
	return c.GetLoggedIn(ctx, "transcriptions/transcript", map[string]string{
		"jobId": strconv.Itoa(jobID),
	})
}

// SubmitRequest is an audio or video file to transcribe.
type SubmitRequest struct {
	FileName string
	Content  io.Reader
	Model    string
	Language string
}

// SubmitJob uploads a file for transcription. The new job's ID is in
// Response.JobID.
func (c *Client) SubmitJob(ctx context.Context, req SubmitRequest) *Response {
	fields := map[string]string{}
	if req.Model != "" {
		fields["model"] = req.Model
	}
	if req.Language != "" && req.Language != "auto" {
		fields["language"] = req.Language
	}
	return c.PostLoggedIn(ctx, "transcriptions/submit", Form{
		Fields: fields,
		Files:  map[string]File{"file": {Name: req.FileName, Content: req.Content}},
	})
}

// AbortJob asks the backend to stop a queued or running job.
func (c *Client) AbortJob(ctx context.Context, jobID int) *Response {
	return c.PostLoggedIn(ctx, "transcriptions/abort", Form{Fields: map[string]string{
		"jobId": strconv.Itoa(jobID),
	}})
}
