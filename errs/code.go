package errs

import "net/http"

// Code 业务错误码，沿用 {code,msg,data} 响应里的 code 字段
type Code int

const (
	OK Code = 0

	// 通用 1xxx
	InvalidParams Code = 1001
	InvalidID     Code = 1002

	// 账号 2xxx
	AccountExists      Code = 2001
	InvalidCredentials Code = 2002
	AccountBanned      Code = 2005

	// 队伍 3xxx
	AlreadyInTeam  Code = 3001
	InvalidInvite  Code = 3004
	NotInTeam      Code = 3005
	LeaderCannotGo Code = 3006
	TeamRequired   Code = 3010

	// 鉴权 / 资源 4xxx
	Unauthorized     Code = 4001
	TokenInvalid     Code = 4003
	Forbidden        Code = 4030
	NotFound         Code = 4004
	TooManyRequests  Code = 4029
	AlreadySolved    Code = 4090
	AttemptsExceeded Code = 4031

	// 服务端 5xxx
	InternalError   Code = 5000
	DatabaseError   Code = 5001
	UnknownChalType Code = 5003
)

var messages = map[Code]string{
	OK:                 "success",
	InvalidParams:      "invalid parameters",
	InvalidID:          "invalid id",
	AccountExists:      "username or email already registered",
	InvalidCredentials: "user does not exist or password is wrong",
	AccountBanned:      "account is banned",
	AlreadyInTeam:      "user already in a team",
	InvalidInvite:      "invalid invitation code",
	NotInTeam:          "user not in any team",
	LeaderCannotGo:     "leader cannot leave the team",
	TeamRequired:       "you must join a team first",
	Unauthorized:       "not logged in",
	TokenInvalid:       "invalid token",
	Forbidden:          "permission denied",
	NotFound:           "resource not found",
	TooManyRequests:    "too many requests",
	AlreadySolved:      "challenge already solved",
	AttemptsExceeded:   "no attempts remaining",
	InternalError:      "internal server error",
	DatabaseError:      "database error",
	UnknownChalType:    "unknown challenge type",
}

// Message 错误码的默认提示
func (c Code) Message() string {
	if msg, ok := messages[c]; ok {
		return msg
	}
	return "unknown error"
}

// HTTPStatus 错误码到 HTTP 状态码的映射
func (c Code) HTTPStatus() int {
	switch c {
	case OK:
		return http.StatusOK
	case InvalidParams, InvalidID:
		return http.StatusBadRequest
	case Unauthorized, TokenInvalid, InvalidCredentials:
		return http.StatusUnauthorized
	case Forbidden, AccountBanned, AttemptsExceeded, TeamRequired:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case TooManyRequests:
		return http.StatusTooManyRequests
	case AccountExists, AlreadyInTeam, AlreadySolved:
		return http.StatusConflict
	case InvalidInvite, NotInTeam, LeaderCannotGo:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
