package app

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/pyrefactor/domain"
)

type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, files []string, opts domain.AnalysisOptions) (*domain.RunReport, error) {
	args := m.Called(ctx, files, opts)
	report, _ := args.Get(0).(*domain.RunReport)
	return report, args.Error(1)
}

type MockFileReader struct {
	mock.Mock
}

func (m *MockFileReader) CollectPythonFiles(paths []string, recursive bool, include, exclude []string) ([]string, error) {
	args := m.Called(paths, recursive, include, exclude)
	files, _ := args.Get(0).([]string)
	return files, args.Error(1)
}

func (m *MockFileReader) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockFileReader) IsValidPythonFile(path string) bool {
	return m.Called(path).Bool(0)
}

type MockReportFormatter struct {
	mock.Mock
}

func (m *MockReportFormatter) Write(report *domain.RunReport, format domain.OutputFormat, w io.Writer) error {
	args := m.Called(report, format, w)
	return args.Error(0)
}

type directWriter struct{}

func (directWriter) Write(w io.Writer, _ string, writeFunc func(io.Writer) error) error {
	return writeFunc(w)
}

func newRequest(out io.Writer) domain.AnalysisRequest {
	req := *domain.DefaultAnalysisRequest()
	req.Paths = []string{"/project"}
	req.OutputWriter = out
	return req
}

func buildUseCase(t *testing.T, svc *MockAnalysisService, reader *MockFileReader, formatter *MockReportFormatter) *AnalyzeUseCase {
	t.Helper()
	uc, err := NewAnalyzeUseCaseBuilder().
		WithService(svc).
		WithFileReader(reader).
		WithFormatter(formatter).
		WithReportWriter(directWriter{}).
		Build()
	require.NoError(t, err)
	return uc
}

func TestAnalyzeUseCase_Execute(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(svc *MockAnalysisService, reader *MockFileReader, formatter *MockReportFormatter)
		mutate    func(req *domain.AnalysisRequest)
		wantErr   error
		wantCode  string
		wantNoRun bool
	}{
		{
			name: "successful run",
			setup: func(svc *MockAnalysisService, reader *MockFileReader, formatter *MockReportFormatter) {
				reader.On("CollectPythonFiles", []string{"/project"}, true, mock.Anything, mock.Anything).
					Return([]string{"/project/a.py", "/project/b.py"}, nil)
				svc.On("Analyze", mock.Anything, []string{"/project/a.py", "/project/b.py"}, mock.AnythingOfType("domain.AnalysisOptions")).
					Return(&domain.RunReport{RunID: "r1"}, nil)
				formatter.On("Write", mock.MatchedBy(func(r *domain.RunReport) bool { return r.RunID == "r1" }),
					domain.OutputFormatText, mock.Anything).Return(nil)
			},
		},
		{
			name:      "invalid options fail before collecting",
			mutate:    func(req *domain.AnalysisRequest) { req.Options.PrefilterThreshold = -0.1 },
			wantErr:   domain.ErrConfig,
			wantNoRun: true,
		},
		{
			name:      "empty paths",
			mutate:    func(req *domain.AnalysisRequest) { req.Paths = nil },
			wantCode:  domain.ErrCodeInvalidInput,
			wantNoRun: true,
		},
		{
			name: "collection failure",
			setup: func(svc *MockAnalysisService, reader *MockFileReader, formatter *MockReportFormatter) {
				reader.On("CollectPythonFiles", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, domain.NewFileNotFoundError("/project", nil))
			},
			wantCode:  domain.ErrCodeFileNotFound,
			wantNoRun: true,
		},
		{
			name: "service failure",
			setup: func(svc *MockAnalysisService, reader *MockFileReader, formatter *MockReportFormatter) {
				reader.On("CollectPythonFiles", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return([]string{"/project/a.py"}, nil)
				svc.On("Analyze", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, domain.NewAnalysisError("boom", nil))
			},
			wantCode: domain.ErrCodeAnalysisError,
		},
		{
			name: "formatter failure returns report",
			setup: func(svc *MockAnalysisService, reader *MockFileReader, formatter *MockReportFormatter) {
				reader.On("CollectPythonFiles", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return([]string{"/project/a.py"}, nil)
				svc.On("Analyze", mock.Anything, mock.Anything, mock.Anything).
					Return(&domain.RunReport{RunID: "r2"}, nil)
				formatter.On("Write", mock.Anything, mock.Anything, mock.Anything).
					Return(domain.NewOutputError("disk full", nil))
			},
			wantCode: domain.ErrCodeOutputError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAnalysisService)
			reader := new(MockFileReader)
			formatter := new(MockReportFormatter)
			if tt.setup != nil {
				tt.setup(svc, reader, formatter)
			}
			uc := buildUseCase(t, svc, reader, formatter)

			req := newRequest(&bytes.Buffer{})
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			report, err := uc.Execute(context.Background(), req)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantCode != "":
				var derr domain.DomainError
				require.ErrorAs(t, err, &derr)
				assert.Equal(t, tt.wantCode, derr.Code)
			default:
				require.NoError(t, err)
				assert.Equal(t, "r1", report.RunID)
			}
			if tt.wantNoRun {
				svc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
			}

			svc.AssertExpectations(t)
			reader.AssertExpectations(t)
			formatter.AssertExpectations(t)
		})
	}
}

func TestAnalyzeUseCase_TimeoutBoundsContext(t *testing.T) {
	svc := new(MockAnalysisService)
	reader := new(MockFileReader)
	formatter := new(MockReportFormatter)

	reader.On("CollectPythonFiles", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]string{"/project/a.py"}, nil)
	svc.On("Analyze", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything, mock.Anything).Return(&domain.RunReport{}, nil)
	formatter.On("Write", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := newRequest(&bytes.Buffer{})
	req.Timeout = time.Minute
	_, err := buildUseCase(t, svc, reader, formatter).Execute(context.Background(), req)

	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestAnalyzeUseCaseBuilder_RequiresDependencies(t *testing.T) {
	_, err := NewAnalyzeUseCaseBuilder().Build()
	assert.Error(t, err)

	_, err = NewAnalyzeUseCaseBuilder().WithService(new(MockAnalysisService)).Build()
	assert.Error(t, err)
}

func TestAnalyzeUseCase_NoOutputDestination(t *testing.T) {
	uc := buildUseCase(t, new(MockAnalysisService), new(MockFileReader), new(MockReportFormatter))

	req := newRequest(nil)
	_, err := uc.Execute(context.Background(), req)

	var derr domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrCodeOutputError, derr.Code)
}
