package controller

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"ctchen222/tictactoe-history/internal/api/middleware"
	"ctchen222/tictactoe-history/internal/api/response"
	"ctchen222/tictactoe-history/internal/api/service"
	"ctchen222/tictactoe-history/internal/game"
	"ctchen222/tictactoe-history/internal/view"

	"github.com/gin-gonic/gin"
)

// GameController handles the HTML and JSON game endpoints.
type GameController struct {
	gameService service.GameService
}

// NewGameController creates a new GameController.
func NewGameController(gameService service.GameService) *GameController {
	return &GameController{
		gameService: gameService,
	}
}

// Page renders the full page for the session's game.
func (gc *GameController) Page(c *gin.Context) {
	v, err := gc.gameService.State(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to load game", "error", err)
		c.String(http.StatusInternalServerError, "could not load your game")
		return
	}
	c.HTML(http.StatusOK, view.PageTemplate, v)
}

// PlaySquare handles a click on a board cell from a plain form post.
func (gc *GameController) PlaySquare(c *gin.Context) {
	gc.submit(c, "index", game.Play)
}

// JumpTo handles a click on a move-list entry from a plain form post.
func (gc *GameController) JumpTo(c *gin.Context) {
	gc.submit(c, "step", game.Jump)
}

// submit applies the event and redirects back to the page. A malformed
// parameter is a click that changes nothing.
func (gc *GameController) submit(c *gin.Context, param string, event func(int) game.Event) {
	ctx := c.Request.Context()
	value, err := intParam(c, param)
	if err != nil {
		slog.WarnContext(ctx, "ignoring malformed click", "param", param, "value", c.Param(param))
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if _, err := gc.gameService.Apply(ctx, middleware.GetSessionID(c), event(value)); err != nil {
		slog.ErrorContext(ctx, "failed to apply click", "error", err)
		c.String(http.StatusInternalServerError, "could not update your game")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// GetGame returns the session's game as JSON.
func (gc *GameController) GetGame(c *gin.Context) {
	v, err := gc.gameService.State(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.SuccessResponse(c, v)
}

// PlaySquareJSON plays a cell and returns the updated game.
func (gc *GameController) PlaySquareJSON(c *gin.Context) {
	gc.apply(c, "index", game.Play)
}

// JumpToJSON moves through the history and returns the updated game.
func (gc *GameController) JumpToJSON(c *gin.Context) {
	gc.apply(c, "step", game.Jump)
}

func (gc *GameController) apply(c *gin.Context, param string, event func(int) game.Event) {
	value, err := intParam(c, param)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	v, err := gc.gameService.Apply(c.Request.Context(), middleware.GetSessionID(c), event(value))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.SuccessResponse(c, v)
}

// ResetGame starts the session over with an empty board.
func (gc *GameController) ResetGame(c *gin.Context) {
	v, err := gc.gameService.Reset(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.SuccessResponse(c, v)
}

func intParam(c *gin.Context, name string) (int, error) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, response.BadRequest(fmt.Sprintf("%s must be an integer", name))
	}
	return value, nil
}
