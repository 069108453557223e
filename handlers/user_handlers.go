package handlers

import (
	"eshop/services"
	"github.com/gin-gonic/gin"
	"net/http"
)

// 註冊使用者帳戶
func RegisterHandler(c *gin.Context, users *services.UserService) {
	var registerReq services.RegisterInput
	if err := c.ShouldBindJSON(&registerReq); err != nil {
		respondError(c, bindError(err))
		return
	}

	user, err := users.Register(c.Request.Context(), registerReq)
	if err != nil {
		respondError(c, err)
		return
	}

	//成功註冊
	c.JSON(http.StatusCreated, user)
}

func LoginHandler(c *gin.Context, users *services.UserService) {
	//從請求擷取帳號和密碼
	var loginReq services.LoginInput
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		respondError(c, bindError(err))
		return
	}

	result, err := users.Login(c.Request.Context(), loginReq)
	if err != nil {
		respondError(c, err)
		return
	}

	//成功登入 回傳Token
	c.JSON(http.StatusOK, result)
}

// 查詢使用者列表
func GetUserListHandler(c *gin.Context, users *services.UserService) {
	userList, err := users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userList)
}

// 查詢使用者資料
func GetUserProfileHandler(c *gin.Context, users *services.UserService) {
	user, err := users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// 變更使用者資料
func UpdateUserProfileHandler(c *gin.Context, users *services.UserService) {
	var patchReq services.UserPatch
	if err := c.ShouldBindJSON(&patchReq); err != nil {
		respondError(c, bindError(err))
		return
	}

	user, err := users.PatchUser(c.Request.Context(), c.Param("id"), patchReq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "the user is updated!",
		"user":    user,
	})
}

func DeleteUserHandler(c *gin.Context, users *services.UserService) {
	if err := users.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, "the user is deleted!")
}

func GetUserCountHandler(c *gin.Context, users *services.UserService) {
	count, err := users.CountUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userCount": count,
	})
}
