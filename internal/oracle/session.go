package oracle

import (
	"context"
	"fmt"
	"net/http"
)

// Constraints bound the structural search space on the service side.
type Constraints struct {
	MaxComplexity int      `json:"max_complexity"`
	Operators     []string `json:"operators,omitempty"` // allowed elementary functions
}

// ProposeRequest asks the service for candidate transformations of the named
// covariates that best separate the binary target column.
type ProposeRequest struct {
	Covariates  []string    `json:"covariates"`
	Target      string      `json:"target"`
	Constraints Constraints `json:"constraints"`
}

// Candidate is one ranked closed-form expression. Expression carries the
// functional form in wire format ("reciprocal", "exp", "log", "identity");
// Coef is the fitted constant of the form.
type Candidate struct {
	Rank       int     `json:"rank"`
	Covariate  string  `json:"covariate"`
	Expression string  `json:"expression"`
	Coef       float64 `json:"coef"`
	Score      float64 `json:"score"` // service-side separation score, higher is better
}

// Session is one allocated simulator session on the discovery service. It is
// a stateful remote resource; acquire with Client.Connect and release with
// Close when the search ends.
type Session struct {
	client *Client
	id     string
}

type sessionBody struct {
	SessionID string `json:"session_id"`
}

type proposeResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Connect allocates a fresh simulator session.
func (c *Client) Connect(ctx context.Context) (*Session, error) {
	u := fmt.Sprintf("%s/v1/sessions", c.baseURL)
	var body sessionBody
	if err := c.doJSON(ctx, http.MethodPost, u, "connect session", nil, &body); err != nil {
		return nil, err
	}
	if body.SessionID == "" {
		return nil, fmt.Errorf("oracle: connect session: empty session id")
	}
	c.logger.InfoContext(ctx, "discovery session allocated", "session", body.SessionID)
	return &Session{client: c, id: body.SessionID}, nil
}

// ID returns the service-side session identifier.
func (s *Session) ID() string { return s.id }

// Propose runs one search pass and returns candidates ranked best-first.
func (s *Session) Propose(ctx context.Context, req ProposeRequest) ([]Candidate, error) {
	u := fmt.Sprintf("%s/v1/sessions/%s/propose", s.client.baseURL, s.id)
	var resp proposeResponse
	if err := s.client.doJSON(ctx, http.MethodPost, u, "propose", req, &resp); err != nil {
		return nil, err
	}
	return resp.Candidates, nil
}

// Incorporate tells the service which candidate was accepted so subsequent
// passes search conditional on it.
func (s *Session) Incorporate(ctx context.Context, c Candidate) error {
	u := fmt.Sprintf("%s/v1/sessions/%s/incorporate", s.client.baseURL, s.id)
	return s.client.doJSON(ctx, http.MethodPost, u, "incorporate", c, nil)
}

// Reset clears accumulated session state without releasing the session.
func (s *Session) Reset(ctx context.Context) error {
	u := fmt.Sprintf("%s/v1/sessions/%s/reset", s.client.baseURL, s.id)
	return s.client.doJSON(ctx, http.MethodPost, u, "reset", nil, nil)
}

// Close releases the simulator session. Always pair with Connect, typically
// via defer, so sessions are not leaked on error paths.
func (s *Session) Close(ctx context.Context) error {
	u := fmt.Sprintf("%s/v1/sessions/%s", s.client.baseURL, s.id)
	return s.client.doJSON(ctx, http.MethodDelete, u, "close session", nil, nil)
}
