package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/server/ingest"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/retrieval"
	"github.com/dmitrijs2005/studyvault/internal/server/services"
)

func (a *App) commands() []command {
	return []command{
		{name: "register", usage: "register", run: a.register},
		{name: "login", usage: "login", run: a.login},
		{name: "logout", usage: "logout", auth: true, run: a.logout},
		{name: "upload", usage: "upload <file>...", auth: true, run: a.owned(a.upload)},
		{name: "docs", usage: "docs", auth: true, run: a.owned(a.docs)},
		{name: "delete", usage: "delete <document id>", auth: true, run: a.owned(a.deleteDocument)},
		{name: "search", usage: "search <query>", auth: true, run: a.owned(a.search)},
		{name: "ask", usage: "ask", auth: true, run: a.owned(a.ask)},
		{name: "history", usage: "history [n]", auth: true, run: a.owned(a.history)},
		{name: "bookmark", usage: "bookmark", auth: true, run: a.owned(a.bookmark)},
		{name: "bookmarks", usage: "bookmarks [subject]", auth: true, run: a.owned(a.bookmarks)},
		{name: "unbookmark", usage: "unbookmark <bookmark id>", auth: true, run: a.owned(a.unbookmark)},
		{name: "card", usage: "card", auth: true, run: a.owned(a.card)},
		{name: "cards", usage: "cards", auth: true, run: a.owned(a.cards)},
		{name: "generate", usage: "generate <document id> [count]", auth: true, run: a.owned(a.generate)},
		{name: "subject", usage: "subject <name> [color]", auth: true, run: a.owned(a.subject)},
		{name: "prefs", usage: "prefs", auth: true, run: a.owned(a.prefs)},
		{name: "stats", usage: "stats", auth: true, run: a.owned(a.stats)},
	}
}

type ownedFunc func(ctx context.Context, owner string, args []string) error

// owned resolves the session owner before running fn.
func (a *App) owned(fn ownedFunc) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		owner, err := a.currentOwner()
		if err != nil {
			return err
		}
		return fn(ctx, owner, args)
	}
}

func (a *App) register(ctx context.Context, _ []string) error {
	email, err := a.in.required("Email")
	if err != nil {
		return err
	}
	username, err := a.in.required("Username")
	if err != nil {
		return err
	}
	password, err := a.in.secret("Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	p, err := a.svc.Users.Register(ctx, email, string(password), username)
	if err != nil {
		return err
	}
	a.printf("Registered %s\n", p.Username)
	return nil
}

func (a *App) login(ctx context.Context, _ []string) error {
	email, err := a.in.required("Email")
	if err != nil {
		return err
	}
	password, err := a.in.secret("Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.svc.Users.Login(ctx, email, string(password))
	if err != nil {
		return err
	}
	if a.token != "" {
		a.revoke(ctx, a.token)
	}
	a.token, a.username = res.Token, res.Profile.Username
	a.printf("Welcome, %s! Study streak: %d day(s)\n", res.Profile.Username, res.Profile.Preferences.StudyStreak)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	err := a.endSession(ctx, a.token)
	a.clearSession()
	if err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}

func (a *App) upload(ctx context.Context, owner string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no files given", common.ErrInvalidInput)
	}

	uploads := make([]ingest.Upload, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			a.printf("%s: %v\n", path, err)
			continue
		}
		uploads = append(uploads, ingest.Upload{Data: data, Filename: filepath.Base(path), Size: int64(len(data))})
	}

	for _, r := range a.svc.Documents.IngestBatch(ctx, owner, uploads) {
		if r.Err != nil {
			a.printf("%s: %v\n", r.Filename, r.Err)
			continue
		}
		d := r.Document
		a.printf("%s: %s (subject %s, %d chunks, keywords %s)\n",
			r.Filename, d.ID, d.Subject, len(d.Chunks), strings.Join(d.Keywords, ", "))
	}
	return nil
}

func (a *App) docs(ctx context.Context, owner string, _ []string) error {
	list, err := a.svc.Documents.ListDocuments(ctx, owner)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No documents\n")
		return nil
	}
	for _, d := range list {
		a.printf("%s  %-30s  %-10s  %s\n", d.ID, d.OriginalName, d.Subject, d.UploadedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *App) deleteDocument(ctx context.Context, owner string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: delete <document id>", common.ErrInvalidInput)
	}
	if err := a.svc.Documents.DeleteDocument(ctx, owner, args[0]); err != nil {
		return err
	}
	a.printf("Deleted %s\n", args[0])
	return nil
}

func (a *App) search(ctx context.Context, owner string, args []string) error {
	query := strings.Join(args, " ")
	chunks, err := a.svc.Retrieval.Retrieve(ctx, owner, query, retrieval.DefaultMaxResults)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		a.printf("No matches\n")
		return nil
	}
	for _, c := range chunks {
		a.printf("[%d] %s / %s\n    %s\n", c.Score, c.DocumentName, c.ChunkID, preview(c.Text, 160))
	}
	return nil
}

func (a *App) ask(ctx context.Context, owner string, _ []string) error {
	question, err := a.in.required("Question")
	if err != nil {
		return err
	}
	subject, err := a.in.text("Subject (optional)")
	if err != nil {
		return err
	}
	mode, err := a.in.text("Mode: normal, reverse, summary or quiz (optional)")
	if err != nil {
		return err
	}

	res, err := a.svc.Tutor.Ask(ctx, owner, services.AskRequest{Question: question, Subject: subject, Mode: mode})
	if err != nil {
		return err
	}
	a.printf("\n%s\n\n", res.Answer)
	a.printf("source: %s, confidence: %d, bloom's level: %s\n", res.Source, res.Confidence, res.BloomsLevel)
	for _, s := range res.Sources {
		a.printf("  from %s (%s)\n", s.Name, s.ID)
	}
	return nil
}

func (a *App) history(ctx context.Context, owner string, args []string) error {
	n := services.DefaultRecentHistory
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: bad count %q", common.ErrInvalidInput, args[0])
		}
		n = v
	}

	entries, err := a.svc.History.Recent(ctx, owner, n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		a.printf("%s  Q: %s\n    A: %s\n", e.Timestamp.Format("2006-01-02 15:04"), e.Question, preview(e.Answer, 120))
	}
	return nil
}

func (a *App) bookmark(ctx context.Context, owner string, _ []string) error {
	typ, err := a.in.required("Type (e.g. answer, note)")
	if err != nil {
		return err
	}
	content, err := a.in.multiline("Content")
	if err != nil {
		return err
	}
	subject, err := a.in.text("Subject (optional)")
	if err != nil {
		return err
	}
	tags, err := a.in.text("Tags, comma separated (optional)")
	if err != nil {
		return err
	}

	b, err := a.svc.Bookmarks.Add(ctx, owner, services.BookmarkInput{
		Type:    typ,
		Content: content,
		Subject: subject,
		Tags:    splitList(tags),
	})
	if err != nil {
		return err
	}
	a.printf("Bookmarked %s\n", b.ID)
	return nil
}

func (a *App) bookmarks(ctx context.Context, owner string, args []string) error {
	subject := ""
	if len(args) > 0 {
		subject = args[0]
	}
	list, err := a.svc.Bookmarks.List(ctx, owner, subject)
	if err != nil {
		return err
	}
	for _, b := range list {
		a.printf("%s  [%s/%s] %s\n", b.ID, b.Type, b.Subject, preview(b.Content, 80))
	}
	return nil
}

func (a *App) unbookmark(ctx context.Context, owner string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: unbookmark <bookmark id>", common.ErrInvalidInput)
	}
	if err := a.svc.Bookmarks.Remove(ctx, owner, args[0]); err != nil {
		return err
	}
	a.printf("Removed %s\n", args[0])
	return nil
}

func (a *App) card(ctx context.Context, owner string, _ []string) error {
	question, err := a.in.required("Question")
	if err != nil {
		return err
	}
	answer, err := a.in.required("Answer")
	if err != nil {
		return err
	}
	subject, err := a.in.text("Subject (optional)")
	if err != nil {
		return err
	}

	c, err := a.svc.Flashcards.CreateUserFlashcard(ctx, owner, services.FlashcardInput{
		Question: question,
		Answer:   answer,
		Subject:  subject,
	})
	if err != nil {
		return err
	}
	a.printf("Created card %s\n", c.ID)
	return nil
}

func (a *App) cards(ctx context.Context, owner string, _ []string) error {
	deck, err := a.svc.Flashcards.List(ctx, owner)
	if err != nil {
		return err
	}
	printCards := func(title string, cards []models.Flashcard) {
		a.printf("%s (%d)\n", title, len(cards))
		for _, c := range cards {
			a.printf("  %s  Q: %s\n      A: %s\n", c.ID, c.Question, c.Answer)
		}
	}
	printCards("Your cards", deck.UserMade)
	printCards("Generated cards", deck.AIGenerated)
	return nil
}

func (a *App) generate(ctx context.Context, owner string, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("%w: usage: generate <document id> [count]", common.ErrInvalidInput)
	}
	count := services.DefaultGeneratedCards
	if len(args) == 2 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: bad count %q", common.ErrInvalidInput, args[1])
		}
		count = v
	}

	cards, err := a.svc.Flashcards.GenerateFromDocument(ctx, owner, args[0], count)
	if err != nil {
		return err
	}
	a.printf("Generated %d card(s)\n", len(cards))
	return nil
}

func (a *App) subject(ctx context.Context, owner string, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("%w: usage: subject <name> [color]", common.ErrInvalidInput)
	}
	color := ""
	if len(args) == 2 {
		color = args[1]
	}
	s, err := a.svc.Profiles.AddCustomSubject(ctx, owner, args[0], color)
	if err != nil {
		return err
	}
	a.printf("Added subject %s (%s)\n", s.Name, s.Color)
	return nil
}

// prefs asks for every preference; an empty answer keeps the current value.
func (a *App) prefs(ctx context.Context, owner string, _ []string) error {
	p, err := a.svc.Users.Profile(ctx, owner)
	if err != nil {
		return err
	}
	cur := p.Preferences

	var u services.PreferencesUpdate
	fields := []struct {
		prompt  string
		current string
		dst     **string
	}{
		{"Answer length (short, medium, long)", cur.AnswerLength, &u.AnswerLength},
		{"Analogy style", cur.AnalogyStyle, &u.AnalogyStyle},
		{"Bloom's level", cur.BloomsLevel, &u.BloomsLevel},
		{"Focus level", cur.FocusLevel, &u.FocusLevel},
		{"Theme", cur.Theme, &u.Theme},
	}
	for _, f := range fields {
		v, err := a.in.text(fmt.Sprintf("%s [%s]", f.prompt, f.current))
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = &v
		}
	}

	updated, err := a.svc.Profiles.UpdatePreferences(ctx, owner, u)
	if err != nil {
		return err
	}
	a.printf("Preferences saved: length %s, analogy %s, bloom's %s\n",
		updated.AnswerLength, updated.AnalogyStyle, updated.BloomsLevel)
	return nil
}

func (a *App) stats(ctx context.Context, owner string, _ []string) error {
	an, err := a.svc.Analytics.Get(ctx, owner)
	if err != nil {
		return err
	}
	a.printf("Questions asked: %d\n", an.QuestionsAsked)
	a.printf("Concepts learned: %s\n", strings.Join(an.ConceptsLearned, ", "))

	names := make([]string, 0, len(an.SubjectProgress))
	for name := range an.SubjectProgress {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := an.SubjectProgress[name]
		a.printf("  %-16s %3d questions, average accuracy %.1f\n", name, s.QuestionsAsked, s.AverageAccuracy)
	}

	for _, level := range models.BloomLevels {
		if n := an.BloomsLevels[level]; n > 0 {
			a.printf("  %-12s %d\n", level, n)
		}
	}
	return nil
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
