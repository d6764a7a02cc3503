package compare

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"etf-analysis/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoPrevious = errors.New("no previous snapshot")

type fakeSnapshots struct {
	data    map[string][]domain.Holding
	history []string // newest first
	err     error
}

func (f *fakeSnapshots) GetHoldings(_ context.Context, id string) ([]domain.Holding, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data[id], nil
}

func (f *fakeSnapshots) PreviousSnapshotID(_ context.Context, _ string, id string) (string, string, error) {
	i := 0
	if id != "" {
		for i = 0; i < len(f.history) && f.history[i] != id; i++ {
		}
	}
	if i+1 >= len(f.history) {
		return "", "", errNoPrevious
	}
	return f.history[i], f.history[i+1], nil
}

func newFake() *fakeSnapshots {
	return &fakeSnapshots{
		data: map[string][]domain.Holding{
			"s1": {h("MSFT", 5.0)},
			"s2": {h("MSFT", 5.5), h("GOOG", 2.0)},
			"s3": {h("GOOG", 2.0)},
		},
		history: []string{"s3", "s2", "s1"},
	}
}

func TestCompareSnapshots(t *testing.T) {
	svc := &Service{Snapshots: newFake()}
	res, err := svc.CompareSnapshots(context.Background(), "s1", "s2")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.NewCount)
	assert.Equal(t, 1, res.Summary.ChangedCount)
}

func TestCompareSnapshots_SameID(t *testing.T) {
	svc := &Service{Snapshots: newFake()}
	_, err := svc.CompareSnapshots(context.Background(), "s1", "s1")
	assert.ErrorIs(t, err, ErrSameSnapshot)
}

func TestCompareSnapshots_UnknownIDsAreEmpty(t *testing.T) {
	svc := &Service{Snapshots: newFake()}
	res, err := svc.CompareSnapshots(context.Background(), "nope", "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT"}, tickers(res.Added))
	assert.Equal(t, 0, res.Summary.BaseCount)
}

func TestCompareSnapshots_StoreError(t *testing.T) {
	f := newFake()
	f.err = errors.New("db down")
	svc := &Service{Snapshots: f}
	_, err := svc.CompareSnapshots(context.Background(), "s1", "s2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestCompareWithPrevious(t *testing.T) {
	svc := &Service{Snapshots: newFake()}

	res, err := svc.CompareWithPrevious(context.Background(), "SPY", "")
	require.NoError(t, err)
	assert.Equal(t, "s2", res.BaseSnapshotID)
	assert.Equal(t, "s3", res.TargetSnapshotID)
	assert.Equal(t, []string{"MSFT"}, tickers(res.Removed))

	res, err = svc.CompareWithPrevious(context.Background(), "SPY", "s2")
	require.NoError(t, err)
	assert.Equal(t, "s1", res.BaseSnapshotID)

	_, err = svc.CompareWithPrevious(context.Background(), "SPY", "s1")
	assert.ErrorIs(t, err, errNoPrevious)
}

func TestWriteCSV(t *testing.T) {
	res := Diff(
		[]domain.Holding{h("MSFT", 5.0), h("XOM", 1.25)},
		[]domain.Holding{h("MSFT", 5.5), h("GOOG", 2.0)},
	)
	rows := res.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, Row{ChangeType: ChangeNew, Ticker: "GOOG", CompanyName: "GOOG Corp", TargetWeight: "2.0000", Change: "2.0000"}, rows[0])
	assert.Equal(t, Row{ChangeType: ChangeRemoved, Ticker: "XOM", CompanyName: "XOM Corp", BaseWeight: "1.2500", Change: "-1.2500"}, rows[1])
	assert.Equal(t, "10.00", rows[2].ChangePercent)
	assert.Equal(t, "0.5000", rows[2].Change)

	var buf bytes.Buffer
	require.NoError(t, res.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "change_type,ticker,company_name,base_weight,target_weight,change,change_percent", lines[0])
	assert.Equal(t, "changed,MSFT,MSFT Corp,5.0000,5.5000,0.5000,10.00", lines[3])
}
