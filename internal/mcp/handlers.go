package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/uro-calc-engine/internal/domain"
	"github.com/uro-calc-engine/internal/report"
)

const (
	ListToolName     = "list_calculators"
	DescribeToolName = "describe_calculator"
	evaluatePrefix   = "evaluate_"
)

// EvaluateParams defines parameters for the evaluate_<calculator> tools
type EvaluateParams struct {
	Values map[string]string   `json:"values" jsonschema:"input values keyed by field name, as entered in the form"`
	Rows   []map[string]string `json:"rows,omitempty" jsonschema:"entries of a repeated field, one map per row"`
}

// EvaluateResult defines the result structure for the evaluate tools. An
// incomplete input is not an error: Incomplete is set and Problems lists
// the fields to fix.
type EvaluateResult struct {
	Calculator string                    `json:"calculator"`
	Incomplete bool                      `json:"incomplete"`
	Problems   []*domain.ValidationError `json:"problems,omitempty"`
	Record     *domain.ResultRecord      `json:"record,omitempty"`
	Report     string                    `json:"report,omitempty"`
}

// ListParams defines parameters for list_calculators
type ListParams struct{}

// CalculatorSummary is one line of the calculator list.
type CalculatorSummary struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tool        string   `json:"tool"`
	Required    []string `json:"required"`
}

// ListResult defines the result structure for list_calculators
type ListResult struct {
	Calculators []CalculatorSummary `json:"calculators"`
}

// DescribeParams defines parameters for describe_calculator
type DescribeParams struct {
	Name string `json:"name" jsonschema:"calculator name as returned by list_calculators"`
}

// ToolName returns the evaluation tool name of a calculator.
func ToolName(calculator string) string {
	return evaluatePrefix + strings.ReplaceAll(calculator, "-", "_")
}

// registerTools registers the catalog tools and one evaluation tool per
// calculator.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ListToolName,
		Description: "List the available urology calculators and their required inputs.",
	}, s.handleList)
	s.tools = append(s.tools, ListToolName)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        DescribeToolName,
		Description: "Describe one calculator: every input field with its unit, options and advisory range, and the band tables used to classify results.",
	}, s.handleDescribe)
	s.tools = append(s.tools, DescribeToolName)

	for _, entry := range s.service.Catalog() {
		name := ToolName(entry.Schema.Name)
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        name,
			Description: entry.Schema.Title + ". " + entry.Schema.Description,
		}, s.evaluateHandler(entry.Schema.Name))
		s.tools = append(s.tools, name)

		s.logger.WithField("tool_name", name).Debug("Registered MCP tool")
	}
}

func (s *Server) handleList(ctx context.Context, req *mcp.CallToolRequest, _ ListParams) (*mcp.CallToolResult, ListResult, error) {
	catalog := s.service.Catalog()
	result := ListResult{Calculators: make([]CalculatorSummary, 0, len(catalog))}
	for _, entry := range catalog {
		required := entry.Schema.RequiredFields()
		if required == nil {
			required = []string{}
		}
		result.Calculators = append(result.Calculators, CalculatorSummary{
			Name:        entry.Schema.Name,
			Title:       entry.Schema.Title,
			Description: entry.Schema.Description,
			Tool:        ToolName(entry.Schema.Name),
			Required:    required,
		})
	}
	return nil, result, nil
}

// handleDescribe returns a service.CatalogEntry. Field schemas nest, so the
// tool declares no output schema.
func (s *Server) handleDescribe(ctx context.Context, req *mcp.CallToolRequest, params DescribeParams) (*mcp.CallToolResult, any, error) {
	entry, err := s.service.Describe(strings.TrimSpace(params.Name))
	if err != nil {
		return nil, nil, err
	}
	return nil, entry, nil
}

// evaluateHandler returns the tool handler of one calculator.
func (s *Server) evaluateHandler(calculator string) func(context.Context, *mcp.CallToolRequest, EvaluateParams) (*mcp.CallToolResult, EvaluateResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, params EvaluateParams) (*mcp.CallToolResult, EvaluateResult, error) {
		logger := s.logger.WithField("tool", ToolName(calculator))
		logger.Debug("Tool invoked")

		out := EvaluateResult{Calculator: calculator}
		result, err := s.service.Evaluate(ctx, calculator, domain.Input{Values: params.Values, Rows: params.Rows})
		if err != nil {
			var incomplete *domain.IncompleteInputError
			if errors.As(err, &incomplete) {
				out.Incomplete = true
				out.Problems = incomplete.Problems
				return nil, out, nil
			}
			logger.WithError(err).Warn("Tool evaluation failed")
			return nil, EvaluateResult{}, err
		}

		out.Record = result.Record
		out.Report = report.Markdown(result.Record)

		event := report.NewEvent(result.Record)
		logger.WithFields(logrus.Fields{
			"event_id": event.ID,
			"cached":   result.Cached,
		}).Info(event.String())

		return nil, out, nil
	}
}
