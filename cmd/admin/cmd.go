package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"berdoz-admin/internal/calendar"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/util"

	"golang.org/x/term"
	"gorm.io/gorm"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	openDB     func() (*gorm.DB, error)
	bcryptCost int
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME [-name NAME] [-admin]            - create a dashboard user")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME                            - reset a password and unlock the account")
	fmt.Fprintln(cli.out, "  grid -month LABEL [-year YEAR]                              - print the predicted 4x4 school-day grid")
	fmt.Fprintln(cli.out, "  import -server URL -user USERNAME -resource PATH -file F.json - push rows to a module")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "adduser":
		fs := cli.flagSet("adduser")
		uname := fs.String("username", "", "Login name, 3-32 letters, digits, '_' or '.'.")
		name := fs.String("name", "", "Display name.")
		admin := fs.Bool("admin", false, "Grant access to financial modules.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *uname == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(fs)
		if err != nil {
			return err
		}
		role := models.RoleStaff
		if *admin {
			role = models.RoleAdmin
		}
		return cli.addUser(*uname, *name, role, pwd)

	case "resetpassword":
		fs := cli.flagSet("resetpassword")
		uname := fs.String("username", "", "The user's username. The password will be prompted next.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *uname == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(fs)
		if err != nil {
			return err
		}
		return cli.resetPassword(*uname, pwd)

	case "grid":
		fs := cli.flagSet("grid")
		month := fs.String("month", "", "Month label as typed in the calendar, e.g. \"Nisan-April\".")
		year := fs.Int("year", time.Now().Year(), "Year the label belongs to.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *month == "" {
			fs.Usage()
			return errHelp
		}
		return cli.printGrid(*month, *year)

	case "import":
		fs := cli.flagSet("import")
		server := fs.String("server", "http://localhost:8080", "Dashboard base URL.")
		user := fs.String("user", "", "Username to log in with. The password will be prompted next.")
		resource := fs.String("resource", "", "Module path, e.g. bus or kitchen-expenses.")
		file := fs.String("file", "", "JSON array of rows. Rows without id are created, rows with id replaced.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *user == "" || *resource == "" || *file == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(fs)
		if err != nil {
			return err
		}
		return cli.importRows(context.Background(), *server, *user, pwd, *resource, *file)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) promptPassword(fs *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) addUser(username, name, role, pwd string) error {
	username = strings.TrimSpace(username)
	if err := util.ValidateUsername(username); err != nil {
		return err
	}
	if err := util.ValidatePassword(pwd); err != nil {
		return err
	}
	db, err := cli.openDB()
	if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.User{}).Where("LOWER(username) = LOWER(?)", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("user %q already exists", username)
	}
	hash, err := util.HashPassword(pwd, cli.bcryptCost)
	if err != nil {
		return err
	}
	user := models.User{Username: username, DisplayName: name, Role: role, PasswordHash: hash}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(cli.out, "created %s user %q (id %d)\n", role, username, user.ID)
	return nil
}

func (cli *commandLine) resetPassword(username, pwd string) error {
	if err := util.ValidatePassword(pwd); err != nil {
		return err
	}
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	var user models.User
	if err := db.Where("LOWER(username) = LOWER(?)", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return err
	}
	hash, err := util.HashPassword(pwd, cli.bcryptCost)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"password_hash":         hash,
			"failed_login_attempts": 0,
			"locked_until":          nil,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Session{}).Where("user_id = ?", user.ID).Update("revoked", true).Error
	})
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	fmt.Fprintf(cli.out, "password reset for %q, all sessions signed out\n", user.Username)
	return nil
}

func (cli *commandLine) printGrid(label string, year int) error {
	grid, labelErr := calendar.Predict(label, year)
	if labelErr != nil {
		fmt.Fprintf(cli.out, "warning: %v\n", labelErr)
	}
	fmt.Fprintf(cli.out, "%s -> %s (first Sunday %s)\n",
		label, grid.Target().Format("2006-01-02"), grid.FirstSunday.Format("2006-01-02"))

	tw := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "week")
	for d := 0; d < calendar.Days; d++ {
		fmt.Fprintf(tw, "\t%s", calendar.DayName(d))
	}
	fmt.Fprintln(tw)
	for w := 0; w < calendar.Weeks; w++ {
		fmt.Fprint(tw, calendar.WeekKey(w))
		for d := 0; d < calendar.Days; d++ {
			fmt.Fprintf(tw, "\t%s", grid.Dates[w][d].Format("2006-01-02"))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
