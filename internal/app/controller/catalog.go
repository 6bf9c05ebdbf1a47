package controller

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/dalemusser/studydesk/internal/app/store/appdata"
	"github.com/dalemusser/studydesk/internal/domain/models"
	"go.uber.org/zap"
)

func (c *Controller) selectModule(cmd SelectModule) Outcome {
	i := models.FindModule(c.st.Modules, cmd.ID)
	if i < 0 {
		return NotFound
	}
	m := c.st.Modules[i]
	c.st.SelectedModule = &m
	c.st.CurrentView = ViewModule
	return Applied
}

func (c *Controller) editModule(cmd EditModule) Outcome {
	i := models.FindModule(c.st.Modules, cmd.ID)
	if i < 0 {
		return NotFound
	}
	m := c.st.Modules[i]
	c.st.ModuleToEdit = &m
	c.st.CurrentView = ViewEditModule
	return Applied
}

// saveModule replaces the module with the same id or appends a new one.
// The catalog in memory changes only once the store has accepted it.
func (c *Controller) saveModule(ctx context.Context, cmd SaveModule) Outcome {
	mods := slices.Clone(c.st.Modules)
	if i := models.FindModule(mods, cmd.Module.ID); i >= 0 {
		mods[i] = cmd.Module
	} else {
		mods = append(mods, cmd.Module)
	}
	if err := c.repo.SaveModules(ctx, mods); err != nil {
		return c.saveFailed("modules", err)
	}
	c.st.Modules = mods

	c.clearSelections()
	c.st.CurrentView = ViewDashboard
	return Applied
}

func (c *Controller) deleteModule(ctx context.Context, cmd DeleteModule) Outcome {
	if !cmd.Confirmed {
		return Unconfirmed
	}
	i := models.FindModule(c.st.Modules, cmd.ID)
	if i < 0 {
		return NotFound
	}
	mods := slices.Delete(slices.Clone(c.st.Modules), i, i+1)
	if err := c.repo.SaveModules(ctx, mods); err != nil {
		return c.saveFailed("modules", err)
	}
	c.st.Modules = mods

	if c.st.SelectedModule != nil && c.st.SelectedModule.ID == cmd.ID {
		c.st.SelectedModule = nil
	}
	if c.st.ModuleToEdit != nil && c.st.ModuleToEdit.ID == cmd.ID {
		c.st.ModuleToEdit = nil
	}
	return Applied
}

// saveAnnouncement prepends a new announcement. Ids are the creation time in
// unix millis; a collision within the same millisecond takes the next one.
func (c *Controller) saveAnnouncement(ctx context.Context, cmd SaveAnnouncement) Outcome {
	content := strings.TrimSpace(cmd.Content)
	if content == "" {
		return Unchanged
	}
	now := c.now().UTC()
	ms := now.UnixMilli()
	for c.announcementIndex(strconv.FormatInt(ms, 10)) >= 0 {
		ms++
	}
	a := models.Announcement{
		ID:      strconv.FormatInt(ms, 10),
		Content: content,
		Date:    now,
	}
	anns := append([]models.Announcement{a}, c.st.Announcements...)
	if err := c.repo.SaveAnnouncements(ctx, anns); err != nil {
		return c.saveFailed("announcements", err)
	}
	c.st.Announcements = anns
	return Applied
}

func (c *Controller) deleteAnnouncement(ctx context.Context, cmd DeleteAnnouncement) Outcome {
	i := c.announcementIndex(cmd.ID)
	if i < 0 {
		return NotFound
	}
	anns := slices.Delete(slices.Clone(c.st.Announcements), i, i+1)
	if err := c.repo.SaveAnnouncements(ctx, anns); err != nil {
		return c.saveFailed("announcements", err)
	}
	c.st.Announcements = anns
	return Applied
}

func (c *Controller) announcementIndex(id string) int {
	return slices.IndexFunc(c.st.Announcements, func(a models.Announcement) bool {
		return a.ID == id
	})
}

// saveFailed logs a rejected collection write and names the outcome.
func (c *Controller) saveFailed(what string, err error) Outcome {
	c.log.Warn(what+" not saved", zap.Error(err))
	if errors.Is(err, appdata.ErrTooLarge) {
		return TooLarge
	}
	return NotSaved
}
