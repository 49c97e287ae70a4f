package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RoleGuard は context の role が一致するかを確認します。
func RoleGuard(want string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if role != want {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}
			return next(c)
		}
	}
}

// AdminRoleGuard は role=ADMIN に加えて、sub が管理者リストに入っていることを確認します。
// 監査ログの actor に実在の管理者IDだけが入るようにする。
func AdminRoleGuard(isAdmin func(int64) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//ADMINだけ許可
			if role != RoleAdmin {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			userID, _ := c.Get(CtxUserIDKey).(int64)
			if isAdmin != nil && !isAdmin(userID) {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}

			return next(c)
		}
	}
}
