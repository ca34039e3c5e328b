package services

import (
	"errors"
	"strings"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/testfixtures"
)

func (suite *ServiceTestSuite) TestMinuteLifecycle() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president, testfixtures.WithParticipants(suite.member))
	manager := suite.actor(suite.president)

	created, err := suite.minutes.CreateMinute(suite.ctx, manager, CreateMinuteInput{
		MeetingID: meeting.ID,
		Content:   strings.Repeat("a", 60),
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.MinuteStatusDraft, created.Status)
	assert.Equal(suite.T(), int64(2), created.Progress.Required)

	submitted, err := suite.minutes.SubmitMinute(suite.ctx, manager, created.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.MinuteStatusPendingSignature, submitted.Status)

	content := strings.Repeat("b", 60)
	_, err = suite.minutes.UpdateMinute(suite.ctx, manager, created.ID, UpdateMinuteInput{Content: &content})
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
	assert.Equal(suite.T(), strings.Repeat("a", 60), suite.reloadMinute(created.ID).Content)

	first, err := suite.signatures.Sign(suite.ctx, suite.actor(suite.admin), SignInput{MinuteID: created.ID})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.MinuteStatusPendingSignature, first.MinuteStatus)
	assert.False(suite.T(), first.Progress.Complete)

	second, err := suite.signatures.Sign(suite.ctx, manager, SignInput{MinuteID: created.ID})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.MinuteStatusSigned, second.MinuteStatus)
	assert.True(suite.T(), second.Progress.Complete)

	published, err := suite.minutes.PublishMinute(suite.ctx, manager, created.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.MinuteStatusPublished, published.Status)

	err = suite.minutes.DeleteMinute(suite.ctx, manager, created.ID)
	assert.ErrorIs(suite.T(), err, ErrNotRemovable)
	assert.Equal(suite.T(), models.MinuteStatusPublished, suite.reloadMinute(created.ID).Status)
}

func (suite *ServiceTestSuite) TestCreateMinute_Validation() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)

	_, err := suite.minutes.CreateMinute(suite.ctx, suite.actor(suite.president), CreateMinuteInput{
		MeetingID: meeting.ID,
		Content:   "trop court",
	})
	var verr *ValidationError
	suite.Require().True(errors.As(err, &verr))
	assert.Equal(suite.T(), "content", verr.Field)

	_, err = suite.minutes.CreateMinute(suite.ctx, suite.actor(suite.member), CreateMinuteInput{
		MeetingID: meeting.ID,
		Content:   testfixtures.MinuteContent,
	})
	assert.ErrorIs(suite.T(), err, ErrForbidden)

	_, err = suite.minutes.CreateMinute(suite.ctx, suite.actor(suite.president), CreateMinuteInput{
		MeetingID: 9999,
		Content:   testfixtures.MinuteContent,
	})
	assert.ErrorIs(suite.T(), err, ErrMeetingNotFound)
}

func (suite *ServiceTestSuite) TestCreateMinute_OnePerMeeting() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	input := CreateMinuteInput{MeetingID: meeting.ID, Content: testfixtures.MinuteContent}

	_, err := suite.minutes.CreateMinute(suite.ctx, suite.actor(suite.president), input)
	suite.Require().NoError(err)

	_, err = suite.minutes.CreateMinute(suite.ctx, suite.actor(suite.admin), input)
	assert.ErrorIs(suite.T(), err, ErrMinuteExists)
	assert.ErrorIs(suite.T(), err, ErrConflict)
}

func (suite *ServiceTestSuite) TestUpdateMinute_RejectedTransition() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	minute := testfixtures.CreateMinute(suite.T(), suite.db, meeting, suite.president, models.MinuteStatusDraft)

	published := models.MinuteStatusPublished
	_, err := suite.minutes.UpdateMinute(suite.ctx, suite.actor(suite.admin), minute.ID, UpdateMinuteInput{Status: &published})

	var terr *InvalidTransitionError
	suite.Require().True(errors.As(err, &terr))
	assert.Equal(suite.T(), models.MinuteStatusDraft, terr.From)
	assert.Equal(suite.T(), models.MinuteStatusPublished, terr.To)
	assert.Equal(suite.T(), models.MinuteStatusDraft, suite.reloadMinute(minute.ID).Status)
}

func (suite *ServiceTestSuite) TestUpdateMinute_ContentAndStatusTogether() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	minute := testfixtures.CreateMinute(suite.T(), suite.db, meeting, suite.president, models.MinuteStatusDraft)

	content := strings.Repeat("c", 80)
	pending := models.MinuteStatusPendingSignature
	updated, err := suite.minutes.UpdateMinute(suite.ctx, suite.actor(suite.admin), minute.ID, UpdateMinuteInput{
		Content: &content,
		Status:  &pending,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), content, updated.Content)
	assert.Equal(suite.T(), models.MinuteStatusPendingSignature, updated.Status)
}

func (suite *ServiceTestSuite) TestUpdateMinute_InvalidContentLeavesStatus() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	minute := testfixtures.CreateMinute(suite.T(), suite.db, meeting, suite.president, models.MinuteStatusDraft)

	short := "court"
	pending := models.MinuteStatusPendingSignature
	_, err := suite.minutes.UpdateMinute(suite.ctx, suite.actor(suite.admin), minute.ID, UpdateMinuteInput{
		Content: &short,
		Status:  &pending,
	})
	assert.ErrorIs(suite.T(), err, ErrValidation)
	assert.Equal(suite.T(), models.MinuteStatusDraft, suite.reloadMinute(minute.ID).Status)
}

func (suite *ServiceTestSuite) TestPublishMinute_RequiresSigned() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	minute := testfixtures.CreateMinute(suite.T(), suite.db, meeting, suite.president, models.MinuteStatusPendingSignature)

	_, err := suite.minutes.PublishMinute(suite.ctx, suite.actor(suite.president), minute.ID)
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)

	_, err = suite.minutes.PublishMinute(suite.ctx, suite.actor(suite.member), minute.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *ServiceTestSuite) TestDeleteMinute_RemovesSignatures() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	minute := testfixtures.CreateMinute(suite.T(), suite.db, meeting, suite.president, models.MinuteStatusPendingSignature)
	testfixtures.CreateSignature(suite.T(), suite.db, minute, suite.admin, suite.clock.Now())

	suite.Require().NoError(suite.minutes.DeleteMinute(suite.ctx, suite.actor(suite.president), minute.ID))

	var count int64
	suite.db.Model(&models.Signature{}).Where("minute_id = ?", minute.ID).Count(&count)
	assert.Zero(suite.T(), count)

	_, err := suite.minutes.GetMinute(minute.ID)
	assert.ErrorIs(suite.T(), err, ErrMinuteNotFound)
}

func (suite *ServiceTestSuite) TestExportMinute() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	minute := testfixtures.CreateMinute(suite.T(), suite.db, meeting, suite.president, models.MinuteStatusSigned)
	testfixtures.CreateSignature(suite.T(), suite.db, minute, suite.admin, time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC))

	html, err := suite.minutes.ExportMinute(minute.ID, ExportFormatHTML)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "text/html; charset=utf-8", html.ContentType)
	assert.Contains(suite.T(), string(html.Body), "<h2>Ordre du jour</h2>")
	assert.Contains(suite.T(), string(html.Body), "Alice Admin")
	assert.Contains(suite.T(), string(html.Body), "lundi 10 mars 2025")

	doc, err := suite.minutes.ExportMinute(minute.ID, ExportFormatPDF)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "application/pdf", doc.ContentType)
	assert.True(suite.T(), strings.HasPrefix(string(doc.Body), "%PDF-"))

	_, err = suite.minutes.ExportMinute(minute.ID, "docx")
	assert.ErrorIs(suite.T(), err, ErrValidation)
}
