package main

import (
	"article-api/config"
	"article-api/models"
	"article-api/routes"
	"article-api/store"
	"article-api/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	loc, err := cfg.Location()
	if err != nil {
		utils.Sugar.Fatalf("invalid timezone %q: %v", cfg.Timezone, err)
	}

	db := config.InitDatabase(&models.Article{}, &models.Comment{})
	articleStore := store.NewArticleStore(db, loc, cfg.DefaultPerPage)

	r := routes.SetupRouter(articleStore)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
