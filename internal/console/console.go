// Package console is an interactive menu driving the user API.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/oksasatya/user-lifecycle-api/internal/client"
)

// UserAPI is what the menu needs from the HTTP client.
type UserAPI interface {
	CreateUser(ctx context.Context, in client.UserInput) (*client.User, error)
	GetUser(ctx context.Context, id int64) (*client.User, error)
	UpdateUser(ctx context.Context, id int64, in client.UserInput) (*client.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type Console struct {
	api UserAPI
	in  *bufio.Scanner
	out io.Writer
}

func New(api UserAPI, in io.Reader, out io.Writer) *Console {
	return &Console{api: api, in: bufio.NewScanner(in), out: out}
}

const menu = `
1. Create user
2. Find user
3. Update user
4. Delete user
0. Exit
> `

// Run loops until the user picks 0, input ends, or ctx is done. API errors
// are printed and the loop continues.
func (c *Console) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		fmt.Fprint(c.out, menu)
		choice, ok := c.readLine()
		if !ok {
			return c.in.Err()
		}

		var err error
		switch choice {
		case "1":
			err = c.create(ctx)
		case "2":
			err = c.get(ctx)
		case "3":
			err = c.update(ctx)
		case "4":
			err = c.delete(ctx)
		case "0":
			fmt.Fprintln(c.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(c.out, "Unknown option.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
	}
	return ctx.Err()
}

func (c *Console) create(ctx context.Context) error {
	in, err := c.readInput()
	if err != nil {
		return err
	}
	u, err := c.api.CreateUser(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Created:")
	c.print(u)
	return nil
}

func (c *Console) get(ctx context.Context) error {
	id, err := c.readID()
	if err != nil {
		return err
	}
	u, err := c.api.GetUser(ctx, id)
	if err != nil {
		return err
	}
	c.print(u)
	return nil
}

func (c *Console) update(ctx context.Context) error {
	id, err := c.readID()
	if err != nil {
		return err
	}
	in, err := c.readInput()
	if err != nil {
		return err
	}
	u, err := c.api.UpdateUser(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Updated:")
	c.print(u)
	return nil
}

func (c *Console) delete(ctx context.Context) error {
	id, err := c.readID()
	if err != nil {
		return err
	}
	if err := c.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted user %d.\n", id)
	return nil
}

func (c *Console) print(u *client.User) {
	fmt.Fprintf(c.out, "ID: %d | Name: %s | Email: %s | Age: %d\n", u.ID, u.Name, u.Email, u.Age)
}

func (c *Console) readInput() (client.UserInput, error) {
	name, err := c.prompt("Name: ")
	if err != nil {
		return client.UserInput{}, err
	}
	email, err := c.prompt("Email: ")
	if err != nil {
		return client.UserInput{}, err
	}
	rawAge, err := c.prompt("Age: ")
	if err != nil {
		return client.UserInput{}, err
	}
	age, err := strconv.Atoi(rawAge)
	if err != nil {
		return client.UserInput{}, fmt.Errorf("age must be a number")
	}
	return client.UserInput{Name: name, Email: email, Age: age}, nil
}

func (c *Console) readID() (int64, error) {
	raw, err := c.prompt("ID: ")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id must be a number")
	}
	return id, nil
}

func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, ok := c.readLine()
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}
