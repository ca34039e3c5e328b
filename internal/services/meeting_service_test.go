package services

import (
	"errors"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/testfixtures"
)

func (suite *ServiceTestSuite) createMeetingInput() CreateMeetingInput {
	return CreateMeetingInput{
		Date:           time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
		Time:           "09:30",
		Type:           models.MeetingTypeOrdinary,
		Location:       "Salle B",
		ParticipantIDs: []uint64{suite.member.ID, suite.admin.ID, suite.member.ID},
		AgendaItems: []AgendaItemInput{
			{Title: "Questions diverses", Order: 9},
			{Title: "Approbation du PV", Order: 1},
			{Title: "Budget"},
		},
	}
}

func (suite *ServiceTestSuite) TestCreateMeeting() {
	meeting, err := suite.meetings.CreateMeeting(suite.ctx, suite.actor(suite.president), suite.createMeetingInput())
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.MeetingStatusPlanned, meeting.Status)
	assert.Len(suite.T(), meeting.Participants, 2)
	for _, p := range meeting.Participants {
		assert.Equal(suite.T(), models.ParticipantStatusInvited, p.Status)
	}

	suite.Require().Len(meeting.AgendaItems, 3)
	titles := []string{}
	for i, item := range meeting.AgendaItems {
		assert.Equal(suite.T(), i+1, item.Order)
		titles = append(titles, item.Title)
	}
	assert.Equal(suite.T(), []string{"Approbation du PV", "Questions diverses", "Budget"}, titles)

	suite.Require().NotNil(meeting.FeedbackDeadline)
	expected := time.Date(2025, 4, 13, 9, 30, 0, 0, time.UTC)
	assert.True(suite.T(), expected.Equal(*meeting.FeedbackDeadline), "got %s", meeting.FeedbackDeadline)
}

func (suite *ServiceTestSuite) TestCreateMeeting_Validation() {
	cases := map[string]func(*CreateMeetingInput){
		"time":            func(in *CreateMeetingInput) { in.Time = "9h30" },
		"type":            func(in *CreateMeetingInput) { in.Type = "ANNUAL" },
		"location":        func(in *CreateMeetingInput) { in.Location = "  " },
		"participant_ids": func(in *CreateMeetingInput) { in.ParticipantIDs = nil },
	}
	for field, mutate := range cases {
		input := suite.createMeetingInput()
		mutate(&input)
		_, err := suite.meetings.CreateMeeting(suite.ctx, suite.actor(suite.president), input)
		var verr *ValidationError
		if suite.True(errors.As(err, &verr), field) {
			assert.Equal(suite.T(), field, verr.Field)
		}
	}

	inactive := testfixtures.CreateUser(suite.T(), suite.db, models.UserRoleMember, testfixtures.Inactive())
	input := suite.createMeetingInput()
	input.ParticipantIDs = []uint64{inactive.ID}
	_, err := suite.meetings.CreateMeeting(suite.ctx, suite.actor(suite.president), input)
	assert.ErrorIs(suite.T(), err, ErrValidation)

	_, err = suite.meetings.CreateMeeting(suite.ctx, suite.actor(suite.member), suite.createMeetingInput())
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *ServiceTestSuite) TestUpdateMeeting() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president, testfixtures.WithAgenda("Ancien point"))

	location := "Visioconférence"
	agenda := []AgendaItemInput{{Title: "Nouveau point"}, {Title: "Second point"}}
	updated, err := suite.meetings.UpdateMeeting(suite.ctx, suite.actor(suite.admin), meeting.ID, UpdateMeetingInput{
		Location:    &location,
		AgendaItems: &agenda,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(updated.Location)
	assert.Equal(suite.T(), location, *updated.Location)
	suite.Require().Len(updated.AgendaItems, 2)
	assert.Equal(suite.T(), "Nouveau point", updated.AgendaItems[0].Title)

	sent := models.MeetingStatusConvocationSent
	_, err = suite.meetings.UpdateMeeting(suite.ctx, suite.actor(suite.admin), meeting.ID, UpdateMeetingInput{Status: &sent})
	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *ServiceTestSuite) TestUpdateMeeting_AgendaLockedAfterDispatch() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president,
		testfixtures.ConvocationSentAt(suite.clock.Now()), testfixtures.WithAgenda("Point"))

	agenda := []AgendaItemInput{{Title: "Remplacement"}}
	_, err := suite.meetings.UpdateMeeting(suite.ctx, suite.actor(suite.admin), meeting.ID, UpdateMeetingInput{AgendaItems: &agenda})
	assert.ErrorIs(suite.T(), err, ErrAgendaLocked)

	cancelled := models.MeetingStatusCancelled
	updated, err := suite.meetings.UpdateMeeting(suite.ctx, suite.actor(suite.admin), meeting.ID, UpdateMeetingInput{Status: &cancelled})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.MeetingStatusCancelled, updated.Status)
	assert.NotNil(suite.T(), updated.ConvocationSentAt)
}

func (suite *ServiceTestSuite) TestDeleteMeeting() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president,
		testfixtures.WithParticipants(suite.member), testfixtures.WithAgenda("Point"))
	testfixtures.CreateFeedback(suite.T(), suite.db, meeting, suite.member, suite.clock.Now())

	suite.Require().NoError(suite.meetings.DeleteMeeting(suite.ctx, suite.actor(suite.president), meeting.ID))

	var count int64
	suite.db.Model(&models.AgendaItem{}).Where("meeting_id = ?", meeting.ID).Count(&count)
	assert.Zero(suite.T(), count)
	suite.db.Model(&models.Feedback{}).Where("meeting_id = ?", meeting.ID).Count(&count)
	assert.Zero(suite.T(), count)
	suite.db.Model(&models.Participant{}).Where("meeting_id = ?", meeting.ID).Count(&count)
	assert.Zero(suite.T(), count)

	_, err := suite.meetings.GetMeeting(meeting.ID)
	assert.ErrorIs(suite.T(), err, ErrMeetingNotFound)
}

func (suite *ServiceTestSuite) TestDeleteMeeting_Guards() {
	withMinute := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	testfixtures.CreateMinute(suite.T(), suite.db, withMinute, suite.president, models.MinuteStatusDraft)
	err := suite.meetings.DeleteMeeting(suite.ctx, suite.actor(suite.president), withMinute.ID)
	assert.ErrorIs(suite.T(), err, ErrNotRemovable)

	completed := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president, testfixtures.WithMeetingStatus(models.MeetingStatusCompleted))
	err = suite.meetings.DeleteMeeting(suite.ctx, suite.actor(suite.president), completed.ID)
	assert.ErrorIs(suite.T(), err, ErrNotRemovable)

	sent := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president, testfixtures.ConvocationSentAt(suite.clock.Now()))
	assert.NoError(suite.T(), suite.meetings.DeleteMeeting(suite.ctx, suite.actor(suite.president), sent.ID))
}

func (suite *ServiceTestSuite) TestUpdateParticipantStatus() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president, testfixtures.WithParticipants(suite.member))

	p, err := suite.meetings.UpdateParticipantStatus(suite.actor(suite.president), meeting.ID, suite.member.ID, models.ParticipantStatusPresent)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ParticipantStatusPresent, p.Status)

	_, err = suite.meetings.UpdateParticipantStatus(suite.actor(suite.president), meeting.ID, suite.admin.ID, models.ParticipantStatusPresent)
	assert.ErrorIs(suite.T(), err, ErrParticipantNotFound)

	_, err = suite.meetings.UpdateParticipantStatus(suite.actor(suite.president), meeting.ID, suite.member.ID, "LATE")
	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *ServiceTestSuite) TestListMeetings() {
	testfixtures.CreateMeeting(suite.T(), suite.db, suite.president)
	testfixtures.CreateMeeting(suite.T(), suite.db, suite.president, testfixtures.WithMeetingStatus(models.MeetingStatusCompleted))

	all, total, err := suite.meetings.ListMeetings(ListMeetingsInput{})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(2), total)
	assert.Len(suite.T(), all, 2)

	completed := models.MeetingStatusCompleted
	filtered, total, err := suite.meetings.ListMeetings(ListMeetingsInput{Status: &completed})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	suite.Require().Len(filtered, 1)
	assert.Equal(suite.T(), models.MeetingStatusCompleted, filtered[0].Status)
}

func (suite *ServiceTestSuite) TestAgendaEditing() {
	meeting := testfixtures.CreateMeeting(suite.T(), suite.db, suite.president, testfixtures.WithAgenda("A", "B", "C"))
	admin := suite.actor(suite.admin)

	inserted, err := suite.agenda.AddItem(suite.ctx, admin, meeting.ID, AgendaItemInput{Title: "Premier", Order: 1})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, inserted.Order)

	items, err := suite.agenda.ListItems(meeting.ID)
	suite.Require().NoError(err)
	suite.assertAgenda(items, "Premier", "A", "B", "C")

	suite.Require().NoError(suite.agenda.DeleteItem(suite.ctx, admin, items[2].ID))
	items, err = suite.agenda.ListItems(meeting.ID)
	suite.Require().NoError(err)
	suite.assertAgenda(items, "Premier", "A", "C")

	reordered, err := suite.agenda.Reorder(admin, meeting.ID, []uint64{items[2].ID, items[0].ID, items[1].ID})
	suite.Require().NoError(err)
	suite.assertAgenda(reordered, "C", "Premier", "A")

	_, err = suite.agenda.Reorder(admin, meeting.ID, []uint64{items[0].ID, items[0].ID, items[1].ID})
	assert.ErrorIs(suite.T(), err, ErrValidation)

	_, err = suite.agenda.AddItem(suite.ctx, suite.actor(suite.member), meeting.ID, AgendaItemInput{Title: "Refusé"})
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *ServiceTestSuite) assertAgenda(items []models.AgendaItem, titles ...string) {
	suite.Require().Len(items, len(titles))
	for i, item := range items {
		assert.Equal(suite.T(), i+1, item.Order)
		assert.Equal(suite.T(), titles[i], item.Title)
	}
}
