package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReviewApproved(t *testing.T) {
	tm := NewTemplateManager()

	html, err := tm.Render("review_approved", TemplateData{
		ProfileName:  "Anna",
		ServiceTitle: "Deep Clean",
		Rating:       5,
		Comment:      "Spotless result",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Anna")
	assert.Contains(t, html, "Deep Clean")
	assert.Contains(t, html, "5-star")
	assert.Contains(t, html, "Spotless result")
}

func TestRenderReviewApproved_ProfileOnly(t *testing.T) {
	tm := NewTemplateManager()

	html, err := tm.Render("review_approved", TemplateData{
		ProfileName: "Anna",
		Rating:      4,
	})
	require.NoError(t, err)

	assert.Contains(t, html, "your profile")
	assert.NotContains(t, html, "your service")
	assert.NotContains(t, html, "blockquote")
}

func TestRenderEscapesHTML(t *testing.T) {
	tm := NewTemplateManager()

	html, err := tm.Render("review_approved", TemplateData{
		ProfileName: "Anna",
		Rating:      1,
		Comment:     `<script>alert("x")</script>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	tm := NewTemplateManager()

	_, err := tm.Render("does_not_exist", TemplateData{})
	assert.Error(t, err)
}

func TestMockProviderRecords(t *testing.T) {
	m := NewMockProvider()

	require.NoError(t, m.SendReviewApproved("owner@example.com", "Anna", "", 5, "great"))
	require.NoError(t, m.SendReviewReceived("admin@example.com", "Anna", 5))

	assert.Equal(t, 2, m.SentCount())
	assert.Equal(t, []string{"owner@example.com"}, m.Sent[0].To)
}
