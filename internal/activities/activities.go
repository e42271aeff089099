package activities

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"protoflow/internal/config"
	"protoflow/internal/extract"
	"protoflow/internal/hebrew"
	"protoflow/internal/learning"
	"protoflow/internal/match"
	"protoflow/internal/models"
	"protoflow/internal/providers"
	"protoflow/internal/session"
	"protoflow/internal/storage"
	"protoflow/internal/util"

	"github.com/ledongthuc/pdf"
)

// Activities carries the pipeline steps one worker serves. The normalizer
// and matcher are shared across runs; both are safe for concurrent reads.
type Activities struct {
	cfg            config.Config
	protocolRepo   *storage.ProtocolRepo
	extractionRepo *storage.ExtractionRepo
	personRepo     *storage.PersonRepo
	llmAuditRepo   *storage.LLMAuditRepo
	normalizer     *hebrew.Normalizer
	matcher        *match.Matcher
	providers      *providers.Manager
}

// New builds the activity set. A loaded learner seeds the reversal lexicon
// and answers matcher lookups; nil skips both.
func New(cfg config.Config, db *storage.DB, learner *learning.Learner) (*Activities, error) {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	a := &Activities{
		cfg:            cfg,
		protocolRepo:   storage.NewProtocolRepo(db),
		extractionRepo: storage.NewExtractionRepo(db),
		personRepo:     storage.NewPersonRepo(db),
		llmAuditRepo:   storage.NewLLMAuditRepo(db),
		normalizer:     hebrew.NewNormalizer(),
		matcher:        match.New(),
		providers:      pm,
	}
	a.normalizer.Thresholds = hebrew.Thresholds{
		PrefixRatio: cfg.ReversalPrefixRatio,
		SuffixRatio: cfg.ReversalSuffixRatio,
	}
	a.matcher.Thresholds = match.Thresholds{
		Name:       cfg.NameMatchRatio,
		Staff:      cfg.StaffMatchRatio,
		Role:       cfg.RoleMatchRatio,
		Discussion: cfg.DiscussionMatchRatio,
		Vote:       cfg.VoteMatchRatio,
	}
	if learner != nil {
		learner.SeedLexicon(a.normalizer.Lexicon)
		a.matcher.Learned = func(text, fieldKind string) (string, bool, bool) {
			m, ok := learner.Lookup(text, fieldKind)
			return m.Accepted, m.WasReversed, ok
		}
	}
	pm.SetAudit(func(ctx context.Context, rec providers.CallRecord) {
		_ = a.llmAuditRepo.Insert(ctx, storage.LLMCallRecord{
			Operation:    rec.Operation,
			ProtocolID:   rec.ProtocolID,
			ProviderName: rec.ProviderName,
			Model:        rec.Model,
			RequestID:    rec.RequestID,
			Status:       rec.Status,
			ErrorType:    rec.ErrorType,
		})
	})
	return a, nil
}

// ListProtocolFilesActivity lists the protocol files waiting in the input
// directory. Scanned protocols arrive as PDFs; plain-text exports of older
// OCR runs are accepted too.
func (a *Activities) ListProtocolFilesActivity(ctx context.Context, in ListProtocolFilesInput) (ListProtocolFilesOutput, error) {
	_ = ctx
	dir := in.InputDir
	if strings.TrimSpace(dir) == "" {
		dir = a.cfg.DataInRoot
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ListProtocolFilesOutput{}, fmt.Errorf("read input dir: %w", err)
	}
	paths := make([]string, 0)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if strings.HasSuffix(name, ".pdf") || strings.HasSuffix(name, ".txt") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return ListProtocolFilesOutput{Paths: paths}, nil
}

func (a *Activities) ComputeProtocolIDActivity(ctx context.Context, in ComputeProtocolIDInput) (ComputeProtocolIDOutput, error) {
	_ = ctx
	f, err := os.Open(in.Path)
	if err != nil {
		return ComputeProtocolIDOutput{}, fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()
	sum, err := util.FileID(f)
	if err != nil {
		return ComputeProtocolIDOutput{}, fmt.Errorf("hash file: %w", err)
	}
	return ComputeProtocolIDOutput{ProtocolID: sum}, nil
}

func (a *Activities) GetProtocolActivity(ctx context.Context, in GetProtocolInput) (GetProtocolOutput, error) {
	p, found, err := a.protocolRepo.FindProtocol(ctx, in.ProtocolID)
	if err != nil {
		return GetProtocolOutput{}, err
	}
	return GetProtocolOutput{Found: found, Status: p.Status}, nil
}

// ExtractTextActivity reads the text layer of a protocol file into raw OCR
// lines with page numbers. A file whose text layer is empty fails with
// ErrNoExtractableText; the workflow turns that into a failed protocol, not
// a crashed run.
func (a *Activities) ExtractTextActivity(ctx context.Context, in ExtractTextInput) (ExtractTextOutput, error) {
	_ = ctx
	var (
		lines []models.Line
		pages int
		err   error
	)
	if strings.HasSuffix(strings.ToLower(in.Path), ".txt") {
		lines, pages, err = readTextLines(in.Path)
	} else {
		lines, pages, err = readPDFLines(in.Path)
	}
	if err != nil {
		return ExtractTextOutput{}, err
	}
	if len(lines) == 0 {
		return ExtractTextOutput{}, util.ErrNoExtractableText
	}
	return ExtractTextOutput{
		Raw:   models.RawExtraction{ProtocolID: in.ProtocolID, Lines: lines},
		Pages: pages,
	}, nil
}

func readPDFLines(path string) ([]models.Line, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := r.NumPage()
	lines := make([]models.Line, 0)
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		lines = append(lines, pageLines(i, text)...)
	}
	return lines, pages, nil
}

// Text exports separate pages with form feeds when they carry page
// structure at all.
func readTextLines(path string) ([]models.Line, int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read text file: %w", err)
	}
	pages := strings.Split(string(b), "\f")
	lines := make([]models.Line, 0)
	for i, page := range pages {
		lines = append(lines, pageLines(i+1, page)...)
	}
	return lines, len(pages), nil
}

func pageLines(page int, text string) []models.Line {
	out := make([]models.Line, 0)
	for _, l := range strings.Split(text, "\n") {
		l = util.SanitizeText(l)
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, models.Line{Page: page, Text: l})
	}
	return out
}

func (a *Activities) NormalizeTextActivity(ctx context.Context, in NormalizeTextInput) (NormalizeTextOutput, error) {
	_ = ctx
	return NormalizeTextOutput{Normalized: a.normalizer.Normalize(in.Raw)}, nil
}

func (a *Activities) DetectSectionsActivity(ctx context.Context, in DetectSectionsInput) (DetectSectionsOutput, error) {
	_ = ctx
	return DetectSectionsOutput{Sections: extract.DetectSections(in.Text)}, nil
}

// ParseFieldsActivity runs the extraction chains over the normalized text
// and assembles the review draft. A failing LLM fallback never fails the
// activity: the draft is built from whatever the chains produced, and the
// classified failure goes back to the workflow, which owns retry policy.
func (a *Activities) ParseFieldsActivity(ctx context.Context, in ParseFieldsInput) (ParseFieldsOutput, error) {
	var (
		calls   int
		lastErr error
	)
	ex := &extract.Extractor{MinConfidence: a.cfg.MinConfidence}
	if !in.DisableLLM {
		fb := a.providers.FallbackFor(in.ProtocolID)
		ex.Fallback = func(ctx context.Context, kind, text string) (string, float64, error) {
			calls++
			v, conf, err := fb(ctx, kind, text)
			if err != nil {
				lastErr = err
			}
			return v, conf, err
		}
	}

	plain := in.Normalized.Plain()
	headerText := util.ClipRunes(plain, 1500)
	if h, ok := in.Sections.Get(extract.SectionHeader); ok && strings.TrimSpace(h.Text) != "" {
		headerText = h.Text
	}

	d := session.Draft{
		ProtocolID: in.ProtocolID,
		Reversed:   in.Normalized.Reversed || in.Sections.Reversed,
	}
	if f, err := ex.MeetingNumber(ctx, headerText); err == nil || errors.Is(err, util.ErrExtractionAmbiguous) {
		d.MeetingNumber = &f
	}
	if f, err := ex.MeetingDate(ctx, headerText); err == nil || errors.Is(err, util.ErrExtractionAmbiguous) {
		d.MeetingDate = &f
	}
	mt := extract.MeetingType(headerText)
	d.MeetingType = &mt
	if c, ok := extract.Committee(headerText); ok {
		d.Committee = &c
	}
	widenEvidence(d.MeetingNumber, headerText)
	widenEvidence(d.MeetingDate, headerText)
	widenEvidence(d.MeetingType, headerText)
	widenEvidence(d.Committee, headerText)
	d.Attendance = extract.Attendance(plain)
	d.Staff = extract.Staff(plain)
	d.Items = ex.Discussions(ctx, plain)

	out := ParseFieldsOutput{Draft: d, FallbackCalls: calls}
	if lastErr != nil {
		out.FallbackErrorType = string(providers.ClassifyError(lastErr))
	}
	return out, nil
}

// widenEvidence grows a field's source from the bare pattern hit to the
// text region around it, which is what the review screen shows. Inferred
// fields have no source and keep none.
func widenEvidence[T comparable](f *extract.Field[T], text string) {
	if f == nil || f.Source == "" {
		return
	}
	f.Source = util.EvidenceSnippet(text, f.Source, 200)
}

// MatchRosterActivity resolves draft attendance and staff names against the
// active roster, rewriting tokens the matcher is sure about. The raw OCR
// line stays on each entry for the reviewer.
func (a *Activities) MatchRosterActivity(ctx context.Context, in MatchRosterInput) (MatchRosterOutput, error) {
	roster, err := a.personRepo.ListActivePersons(ctx)
	if err != nil {
		return MatchRosterOutput{}, err
	}
	d := in.Draft
	matched := 0
	unmatched := make([]string, 0)
	for i := range d.Attendance {
		res, merr := a.matcher.Person(d.Attendance[i].Name, roster)
		if merr != nil || res.Person == nil {
			unmatched = append(unmatched, d.Attendance[i].Name)
			continue
		}
		d.Attendance[i].Name = res.Person.FullName
		matched++
	}
	for i := range d.Staff {
		res, merr := a.matcher.StaffPerson(d.Staff[i].Name, roster)
		if merr != nil || res.Person == nil {
			continue
		}
		d.Staff[i].Name = res.Person.FullName
		matched++
	}
	return MatchRosterOutput{Draft: d, Matched: matched, Unmatched: unmatched}, nil
}

func (a *Activities) SaveDraftActivity(ctx context.Context, in SaveDraftInput) error {
	return a.extractionRepo.SaveDraft(ctx, in.ProtocolID, in.Draft)
}

func (a *Activities) WriteProtocolArtifactsActivity(ctx context.Context, in WriteProtocolArtifactsInput) error {
	_ = ctx
	base := filepath.Join(a.cfg.DataOutRoot, "protocols", in.ProtocolID)
	if err := util.EnsureDir(base); err != nil {
		return err
	}
	if err := util.WriteJSONAtomic(filepath.Join(base, "draft.json"), in.Draft); err != nil {
		return err
	}
	if in.NormalizedText != "" {
		if err := util.WriteTextAtomic(filepath.Join(base, "text.txt"), in.NormalizedText); err != nil {
			return err
		}
	}
	rows := make([]any, 0, len(in.Marks))
	for _, m := range in.Marks {
		rows = append(rows, m)
	}
	if err := util.WriteJSONLinesAtomic(filepath.Join(base, "markers.jsonl"), rows); err != nil {
		return err
	}
	return util.WriteJSONAtomic(filepath.Join(base, "processing_log.json"), in.ProcessingLog)
}

func (a *Activities) UpdateProtocolStatusActivity(ctx context.Context, in UpdateProtocolStatusInput) error {
	return a.protocolRepo.UpsertProtocol(ctx, models.Protocol{
		ProtocolID: in.ProtocolID,
		Filename:   in.Filename,
		MeetingNo:  in.MeetingNo,
		Status:     in.Status,
		FailReason: in.FailReason,
	})
}
