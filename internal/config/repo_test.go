package config_test

import (
	"os"
	"testing"

	"github.com/blume-tech/jetson-app/internal/config"
	"github.com/blume-tech/jetson-app/internal/exception"
	"github.com/blume-tech/jetson-app/internal/test_util"
	"github.com/stretchr/testify/assert"
)

func assertEqualConf(t *testing.T, expected, actual *config.Config) {
	assert.Equal(t, expected.Name, actual.Name)
	assert.Equal(t, expected.Targets, actual.Targets)
	assert.Equal(t, expected.Scan.Ports, actual.Scan.Ports)
	assert.Equal(t, expected.Scan.Paths, actual.Scan.Paths)
	assert.Equal(t, expected.Scan.Concurrency, actual.Scan.Concurrency)
	assert.Equal(t, expected.Scan.ProbeTimeoutMs, actual.Scan.ProbeTimeoutMs)
	assert.Equal(t, expected.API.Port, actual.API.Port)
	assert.Equal(t, expected.Telemetry.IntervalSeconds, actual.Telemetry.IntervalSeconds)
}

func TestConfigSqliteRepo(t *testing.T) {
	testDBFile := "config.db"

	defer func() {
		os.RemoveAll(testDBFile)
	}()

	db, err := test_util.GetDBConnection(testDBFile)

	if err != nil {
		t.Logf("failed to create test db: %s", err.Error())
		t.FailNow()
	}

	if err := test_util.Migrate(db, config.ConfigModel{}); err != nil {
		t.Logf("failed to migrate test db: %s", err.Error())
		t.FailNow()
	}

	repo := config.NewSqliteRepo(db)

	t.Run("returns record not found error", func(st *testing.T) {
		_, err := repo.Get("noop")

		assert.Error(st, err)
		assert.Equal(st, exception.ErrRecordNotFound, err)
	})

	t.Run("creates, reads, updates, and destroys config", func(st *testing.T) {
		conf := &config.Config{
			Name:    "test",
			Targets: []string{"192.168.1.0/24"},
			Scan: config.ScanConfig{
				Ports:          []int{80, 554},
				Paths:          []string{"/mjpeg", "/stream"},
				Concurrency:    25,
				ProbeTimeoutMs: 2000,
				NmapPrescan:    true,
			},
			API: config.APIConfig{
				Host: "0.0.0.0",
				Port: 8080,
			},
			Telemetry: config.TelemetryConfig{
				IntervalSeconds: 1,
				HistorySeconds:  600,
			},
		}

		newConf, err := repo.Create(conf)

		assert.NoError(st, err)
		assertEqualConf(st, conf, newConf)

		foundConf, err := repo.Get(newConf.Name)

		assert.NoError(st, err)
		assertEqualConf(st, newConf, foundConf)

		toUpdate := *conf
		toUpdate.ID = newConf.ID
		toUpdate.Scan.Concurrency = 50
		updatedConf, err := repo.Update(&toUpdate)

		assert.NoError(st, err)
		assert.Equal(st, 50, updatedConf.Scan.Concurrency)

		err = repo.Delete(conf.Name)

		assert.NoError(st, err)

		deletedConfig, err := repo.Get(conf.Name)

		assert.Error(st, err)
		assert.Equal(st, exception.ErrRecordNotFound, err)
		assert.Nil(st, deletedConfig)
	})

	t.Run("gets all configs and gets last loaded", func(st *testing.T) {
		conf1 := &config.Config{
			Name:    "conf1",
			Targets: []string{"10.0.1.0/24"},
			Scan: config.ScanConfig{
				Ports: []int{80},
				Paths: []string{"/video"},
			},
		}

		conf2 := &config.Config{
			Name:    "conf2",
			Targets: []string{"10.0.2.0/24"},
			Scan: config.ScanConfig{
				Ports: []int{554},
				Paths: []string{"/live"},
			},
		}

		_, err := repo.Create(conf1)

		assert.NoError(st, err)

		_, err = repo.Create(conf2)

		assert.NoError(st, err)

		confs, err := repo.GetAll()

		assert.NoError(st, err)
		assert.Equal(st, 2, len(confs))

		for _, c := range confs {
			if c.Name == "conf1" {
				assertEqualConf(st, conf1, c)
			} else {
				assertEqualConf(st, conf2, c)
			}
		}

		lastLoaded, err := repo.LastLoaded()

		assert.NoError(st, err)
		assertEqualConf(st, conf2, lastLoaded)

		err = repo.SetLastLoaded("conf1")

		assert.NoError(st, err)

		lastLoaded, err = repo.LastLoaded()

		assert.NoError(st, err)
		assertEqualConf(st, conf1, lastLoaded)
	})
}
