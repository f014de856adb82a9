package tests

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dbadapter "taskmanager/internal/adapter/db"
	"taskmanager/pkg/translator"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// IntegrationSuiteBase runs against a throwaway SQLite file by default.
// Set TEST_DB_DRIVER=mysql to run the same suites on a MySQL server.
type IntegrationSuiteBase struct {
	suite.Suite

	adminDB    *sqlx.DB
	DB         *sqlx.DB
	testDBName string
}

func (s *IntegrationSuiteBase) SetupSuite() {
	gin.SetMode(gin.TestMode)
	zap.ReplaceGlobals(zap.NewNop())
	translator.InitTranslator(translator.Config{
		TranslationFolder:  filepath.Join("..", "..", "..", "..", "pkg", "translator", "translation"),
		SupportedLanguages: []string{translator.LanguageFr, translator.LanguageEn},
	})

	if envOrDefault("TEST_DB_DRIVER", "sqlite") == "mysql" {
		s.setupMySQL()
	}
}

func (s *IntegrationSuiteBase) setupMySQL() {
	host := envOrDefault("MYSQL_HOST", "127.0.0.1")
	port := envOrDefault("MYSQL_PORT", "3306")
	rootUser := envOrDefault("MYSQL_ROOT_USER", "root")
	rootPassword := envOrDefault("MYSQL_ROOT_PASSWORD", "root")
	database := envOrDefault("MYSQL_TEST_DATABASE", envOrDefault("MYSQL_DATABASE", "taskmanager")+"_test")
	params := envOrDefault("MYSQL_PARAMS", "parseTime=true&multiStatements=true&clientFoundRows=true")

	adminDB, err := sqlx.Connect("mysql", mysqlDSN(rootUser, rootPassword, host, port, "", params))
	if err != nil {
		s.T().Skipf("skipping integration suite: could not connect to mysql: %v", err)
	}
	s.adminDB = adminDB
	s.testDBName = database

	s.dropMySQLDatabase()
	_, err = s.adminDB.Exec(fmt.Sprintf("CREATE DATABASE `%s`", database))
	s.Require().NoError(err)

	db, err := sqlx.Connect("mysql", mysqlDSN(rootUser, rootPassword, host, port, database, params))
	s.Require().NoError(err)
	s.DB = db
}

func (s *IntegrationSuiteBase) TearDownSuite() {
	if s.adminDB == nil {
		return
	}
	if s.DB != nil {
		s.Require().NoError(s.DB.Close())
	}
	s.dropMySQLDatabase()
	s.Require().NoError(s.adminDB.Close())
}

// ResetDatabase gives every test an empty, fully migrated schema.
func (s *IntegrationSuiteBase) ResetDatabase() {
	if s.adminDB != nil {
		_, err := s.DB.Exec("DROP TABLE IF EXISTS task_tags, tasks, goose_db_version")
		s.Require().NoError(err)
	} else {
		if s.DB != nil {
			s.Require().NoError(s.DB.Close())
		}
		db, err := dbadapter.ConnectSQLite(filepath.Join(s.T().TempDir(), "tasks.db"))
		s.Require().NoError(err)
		s.DB = db
	}

	s.Require().NoError(dbadapter.RunMigrations(context.Background(), s.DB))
}

// dropMySQLDatabase only ever drops a *_test database.
func (s *IntegrationSuiteBase) dropMySQLDatabase() {
	if s.testDBName == "" || !strings.HasSuffix(s.testDBName, "_test") {
		return
	}
	_, err := s.adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", s.testDBName))
	s.Require().NoError(err)
}

func mysqlDSN(user, password, host, port, database, params string) string {
	if database == "" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/?%s", user, password, host, port, params)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, password, host, port, database, params)
}

func envOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
