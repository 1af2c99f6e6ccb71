package store

import (
	"context"
	"testing"
	"time"

	"github.com/pkozlov/agiwatch/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDocument(source, url, title string) model.Document {
	content := "The model scored 87.5% on MMLU in the latest evaluation round."
	return model.Document{
		ID:          model.DocumentID(source, url),
		Source:      source,
		URL:         url,
		Title:       title,
		Content:     content,
		ContentHash: model.HashContent(content),
		FetchedAt:   time.Now(),
		Evidence: model.EvidenceBundle{
			Snippets: []model.Snippet{{Text: content, Relevance: 0.8}},
		},
	}
}

func TestSaveDocumentsUpsert(t *testing.T) {
	s := testStore(t)

	doc := testDocument("lab-blog", "https://example.com/post", "First title")
	n, err := s.SaveDocuments([]model.Document{doc})
	if err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 new document, got %d", n)
	}

	// Same ID again must not create a second row or count as new
	doc.Title = "Updated title"
	n, err = s.SaveDocuments([]model.Document{doc})
	if err != nil {
		t.Fatalf("SaveDocuments upsert: %v", err)
	}
	if n != 0 {
		t.Errorf("re-crawl reported %d new documents, want 0", n)
	}

	docs, err := s.UnscoredDocuments(10)
	if err != nil {
		t.Fatalf("UnscoredDocuments: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Title != "Updated title" {
		t.Errorf("upsert did not refresh title: %q", docs[0].Title)
	}
	if len(docs[0].Evidence.Snippets) != 1 {
		t.Errorf("evidence did not round-trip: %+v", docs[0].Evidence)
	}
}

func TestAnalysisLifecycle(t *testing.T) {
	s := testStore(t)

	doc := testDocument("lab-blog", "https://example.com/post", "Title")
	if _, err := s.SaveDocuments([]model.Document{doc}); err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}

	exists, err := s.FindExisting(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("FindExisting: %v", err)
	}
	if exists {
		t.Fatal("analysis should not exist yet")
	}

	res := model.AnalysisResult{
		DocumentID:     doc.ID,
		ModelScore:     0.5,
		HeuristicScore: 0.2,
		CombinedScore:  0.5,
		Severity:       model.SeverityMedium,
		Confidence:     0.8,
		Indicators:     []string{"benchmark jump"},
		Breakdown: model.Breakdown{
			ModelWeight:     0.85,
			HeuristicWeight: 0.15,
			Signals:         []model.Signal{{Name: "weighted_combination", Value: 0.455}},
		},
	}
	stored, err := s.InsertAnalysis(context.Background(), res)
	if err != nil {
		t.Fatalf("InsertAnalysis: %v", err)
	}
	if stored.CreatedAt.IsZero() {
		t.Error("InsertAnalysis should stamp CreatedAt")
	}

	exists, err = s.FindExisting(context.Background(), doc.ID)
	if err != nil || !exists {
		t.Fatalf("FindExisting after insert = %v, %v", exists, err)
	}

	// The document is now scored and leaves the unscored queue
	docs, err := s.UnscoredDocuments(10)
	if err != nil {
		t.Fatalf("UnscoredDocuments: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no unscored documents, got %d", len(docs))
	}

	got, err := s.LatestAnalysis(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("LatestAnalysis: %v", err)
	}
	if got == nil || got.Severity != model.SeverityMedium || got.CombinedScore != 0.5 {
		t.Fatalf("unexpected stored analysis: %+v", got)
	}
	if len(got.Breakdown.Signals) != 1 || got.Breakdown.Signals[0].Name != "weighted_combination" {
		t.Errorf("breakdown did not round-trip: %+v", got.Breakdown)
	}

	// Upsert with a raised severity replaces the row in place
	res.CombinedScore = 0.82
	res.Severity = model.SeverityCritical
	if _, err := s.InsertAnalysis(context.Background(), res); err != nil {
		t.Fatalf("InsertAnalysis upsert: %v", err)
	}
	got, err = s.LatestAnalysis(context.Background(), doc.ID)
	if err != nil || got == nil {
		t.Fatalf("LatestAnalysis after upsert: %v", err)
	}
	if got.Severity != model.SeverityCritical {
		t.Errorf("severity = %v, want critical", got.Severity)
	}
}

func TestLatestAnalysisMissing(t *testing.T) {
	s := testStore(t)
	got, err := s.LatestAnalysis(context.Background(), "no-such-doc")
	if err != nil {
		t.Fatalf("LatestAnalysis: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing analysis, got %+v", got)
	}
}

func TestSourceNames(t *testing.T) {
	s := testStore(t)

	docs := []model.Document{
		testDocument("Lab Alpha", "https://example.com/a", "A"),
		testDocument("Lab Alpha", "https://example.com/b", "B"),
		testDocument("lab-beta", "https://example.org/c", "C"),
	}
	if _, err := s.SaveDocuments(docs); err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}

	names, err := s.SourceNames()
	if err != nil {
		t.Fatalf("SourceNames: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("expected 2 distinct sources, got %v", names)
	}
}

func TestJobLifecycle(t *testing.T) {
	s := testStore(t)

	now := time.Now()
	job := model.AnalysisJob{
		ID:            "job-1",
		Status:        model.JobQueued,
		TotalArticles: 5,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.CreateJob(job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	job.Status = model.JobRunning
	job.ProcessedArticles = 2
	job.SuccessfulAnalyses = 2
	job.CurrentArticle = "Some article"
	job.AverageStepMS = 1500
	job.EstimatedRemaining = 4500 * time.Millisecond
	job.UpdatedAt = now.Add(3 * time.Second)
	if err := s.UpdateJobProgress(job); err != nil {
		t.Fatalf("UpdateJobProgress: %v", err)
	}

	got, err := s.GetJob("job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got == nil {
		t.Fatal("job not found")
	}
	if got.Status != model.JobRunning || got.ProcessedArticles != 2 {
		t.Errorf("unexpected job: %+v", got)
	}
	if got.EstimatedRemaining != 4500*time.Millisecond {
		t.Errorf("estimated remaining = %v", got.EstimatedRemaining)
	}

	missing, err := s.GetJob("absent")
	if err != nil || missing != nil {
		t.Errorf("GetJob(absent) = %+v, %v", missing, err)
	}
}

func TestTrendAggregates(t *testing.T) {
	s := testStore(t)

	doc1 := testDocument("lab", "https://example.com/1", "One")
	doc2 := testDocument("lab", "https://example.com/2", "Two")
	if _, err := s.SaveDocuments([]model.Document{doc1, doc2}); err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}

	for _, res := range []model.AnalysisResult{
		{DocumentID: doc1.ID, CombinedScore: 0.4, Severity: model.SeverityMedium, CreatedAt: time.Now()},
		{DocumentID: doc2.ID, CombinedScore: 0.9, Severity: model.SeverityCritical, CreatedAt: time.Now()},
	} {
		if _, err := s.InsertAnalysis(context.Background(), res); err != nil {
			t.Fatalf("InsertAnalysis: %v", err)
		}
	}

	snap, err := s.TrendAggregates(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("TrendAggregates: %v", err)
	}
	if snap.SampleCount != 2 || snap.CriticalCount != 1 {
		t.Errorf("unexpected aggregates: %+v", snap)
	}
	if snap.MaxScore != 0.9 || snap.MinScore != 0.4 {
		t.Errorf("unexpected min/max: %+v", snap)
	}

	snap.Period = "daily"
	if err := s.InsertTrendSnapshot(snap); err != nil {
		t.Fatalf("InsertTrendSnapshot: %v", err)
	}

	// An empty window aggregates to zero without error
	empty, err := s.TrendAggregates(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("TrendAggregates empty: %v", err)
	}
	if empty.SampleCount != 0 || empty.CriticalCount != 0 {
		t.Errorf("expected empty aggregates, got %+v", empty)
	}
}
