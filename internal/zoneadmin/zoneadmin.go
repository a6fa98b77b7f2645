// Package zoneadmin is the duty-zone configuration controller, the simpler
// sibling of posadmin: zones carry only a name and a description, and every
// mutation invalidates the whole page as the original flow reloaded it.
package zoneadmin

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/girrex/roster-web/internal/girrex"
	"github.com/girrex/roster-web/internal/models"
	"github.com/girrex/roster-web/internal/posadmin"
)

var ErrConfirmationRequired = errors.New("zoneadmin: deletion requires confirmation")

type Controller struct {
	Client   girrex.Client
	Validate *validator.Validate
}

type Request struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (c *Controller) List(ctx context.Context, centreID int64) ([]models.Zone, error) {
	return c.Client.ListZones(ctx, centreID)
}

func (c *Controller) Add(ctx context.Context, centreID int64, req Request) (posadmin.Invalidation, error) {
	if err := c.Validate.Struct(req); err != nil {
		return posadmin.InvalidateNone, err
	}
	if err := c.Client.AddZone(ctx, centreID, girrex.ZoneFields{
		Name:        req.Name,
		Description: req.Description,
	}); err != nil {
		return posadmin.InvalidateNone, err
	}
	return posadmin.InvalidatePage, nil
}

func (c *Controller) Update(ctx context.Context, zoneID int64, req Request) (posadmin.Invalidation, error) {
	if err := c.Validate.Struct(req); err != nil {
		return posadmin.InvalidateNone, err
	}
	if err := c.Client.UpdateZone(ctx, zoneID, girrex.ZoneFields{
		Name:        req.Name,
		Description: req.Description,
	}); err != nil {
		return posadmin.InvalidateNone, err
	}
	return posadmin.InvalidatePage, nil
}

func (c *Controller) Delete(ctx context.Context, zoneID int64, confirmed bool) (posadmin.Invalidation, error) {
	if !confirmed {
		return posadmin.InvalidateNone, ErrConfirmationRequired
	}
	if err := c.Client.DeleteZone(ctx, zoneID); err != nil {
		return posadmin.InvalidateNone, err
	}
	return posadmin.InvalidatePage, nil
}
